// Package source describes where template definitions ("precargados") are
// read from: local files, fs.FS entries or HTTP endpoints.
package source

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Source identifies the origin of a template definition.
type Source interface {
	Kind() Kind
	Location() string
}

// Kind enumerates the loader modalities.
type Kind string

const (
	KindFile Kind = "file"
	KindFS   Kind = "fs"
	KindURL  Kind = "url"
)

type fileSource struct {
	path string
}

func (s fileSource) Kind() Kind       { return KindFile }
func (s fileSource) Location() string { return s.path }

// FromFile returns a Source pointing to a file path.
func FromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Kind() Kind       { return KindFS }
func (s fsSource) Location() string { return s.name }

// FromFS returns a Source naming an entry inside the loader's fs.FS.
func FromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Kind() Kind       { return KindURL }
func (s urlSource) Location() string { return s.raw }

// FromURL validates raw and returns an HTTP(S) Source.
func FromURL(raw string) (Source, error) {
	if raw == "" {
		return nil, errors.New("source: empty URL")
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("source: invalid URL %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("source: unsupported URL scheme %q", parsed.Scheme)
	}
	return urlSource{raw: raw}, nil
}

// Parse picks the source kind from location: http(s) URLs become URL
// sources, anything else a file path.
func Parse(location string) (Source, error) {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return nil, errors.New("source: location is required")
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return FromURL(trimmed)
	}
	return FromFile(trimmed), nil
}
