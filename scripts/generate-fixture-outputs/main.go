// Command generate-fixture-outputs converts a legacy definition and writes
// the portable schema, HTML preview and OpenAPI document next to each other,
// so template or exporter changes can be reviewed as plain diffs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	formbuilder "github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/source"
)

func main() {
	var (
		input  = flag.String("input", "examples/fixtures/vacante.json", "legacy definition path")
		title  = flag.String("title", "Alta de vacante", "template title")
		output = flag.String("output", "examples/fixtures/out", "output directory")
	)
	flag.Parse()

	if err := run(*input, *title, *output); err != nil {
		fmt.Fprintf(os.Stderr, "generate-fixture-outputs: %v\n", err)
		os.Exit(1)
	}
}

func run(input, title, output string) error {
	ctx := context.Background()

	out, report, err := formbuilder.ConvertSource(ctx, formbuilder.NewLoader(), source.FromFile(input))
	if err != nil {
		return err
	}
	if report.Fallback {
		return fmt.Errorf("%s is unusable: %s", input, report.FallbackReason)
	}

	portable, err := schema.Marshal(out)
	if err != nil {
		return err
	}
	html, err := formbuilder.RenderHTML(title, out)
	if err != nil {
		return err
	}
	doc, err := formbuilder.SubmissionDocument(ctx, title, out)
	if err != nil {
		return err
	}
	spec, err := openapi.MarshalYAML(doc)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(output, 0o755); err != nil {
		return err
	}
	files := map[string][]byte{
		"schema.json":  append(portable, '\n'),
		"preview.html": html,
		"openapi.yaml": spec,
	}
	for name, data := range files {
		path := filepath.Join(output, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}
