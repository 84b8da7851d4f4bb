package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formbuilder/pkg/legacy"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// SequentialIDs returns a deterministic identifier source producing
// prefix-1, prefix-2, ... so fixtures and goldens stay stable.
func SequentialIDs(prefix string) model.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// LoadTemplate imports a precargados fixture with deterministic identifiers.
func LoadTemplate(t *testing.T, path string) model.Document {
	t.Helper()

	doc, err := LoadTemplateFromPath(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	return doc
}

// LoadTemplateFromPath is LoadTemplate for setup code without a *testing.T.
func LoadTemplateFromPath(path string) (model.Document, error) {
	if path == "" {
		return model.Document{}, errors.New("testsupport: template path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("testsupport: read template: %w", err)
	}
	doc, _ := legacy.Import(data, legacy.WithIDGenerator(SequentialIDs("fx")))
	return doc, nil
}

// MustLoadSchema reads a portable schema golden.
func MustLoadSchema(t *testing.T, path string) schema.PortableSchema {
	t.Helper()

	out, err := schema.Parse(MustReadGolden(t, path))
	if err != nil {
		t.Fatalf("load schema golden: %v", err)
	}
	return out
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	writeFile(t, path, payload)
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	writeFile(t, path, data)
	return true
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ. Nil and empty
// slices compare equal since JSON goldens cannot tell them apart.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got, cmpopts.EquateEmpty())
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureRenderOutput runs a render function that writes to an io.Writer and
// returns what it wrote.
func CaptureRenderOutput(t *testing.T, render func(io.Writer) error) string {
	t.Helper()

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}
