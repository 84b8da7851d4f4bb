package main

import (
	"fmt"
	"os"
)

// version is set during build with -ldflags.
var version = "dev"

func main() {
	root := newRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
