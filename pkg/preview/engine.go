package preview

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Engine loads and caches pongo2 templates from one or more sources.
// Templates are parsed once per name and reused across renders.
type Engine struct {
	mu sync.RWMutex

	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

func newEngine(cfg *config) (*Engine, error) {
	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("preview: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	for _, files := range cfg.templates {
		loaders = append(loaders, pongo2.NewFSLoader(files))
	}
	if len(loaders) == 0 {
		return nil, errors.New("preview: need a template directory or fs.FS")
	}

	engine := &Engine{
		set:       pongo2.NewSet("formbuilder-preview", loaders...),
		templates: make(map[string]*pongo2.Template),
	}
	if len(cfg.globals) > 0 {
		engine.set.Globals.Update(cfg.globals)
	}
	for name, fn := range cfg.filters {
		if err := registerFilter(name, fn); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

// Execute renders the named template with data into w.
func (e *Engine) Execute(w io.Writer, name string, data pongo2.Context) error {
	if e == nil || e.set == nil {
		return errors.New("preview: engine is nil")
	}
	tmpl, err := e.template(name)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(data, &buf); err != nil {
		return fmt.Errorf("preview: execute template %q: %w", name, err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func (e *Engine) template(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[name]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("preview: load template %q: %w", name, err)
	}
	e.templates[name] = tmpl
	return tmpl, nil
}

// pongo2 keeps filters in a process-wide registry, so a name that is already
// registered is left alone.
func registerFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("preview: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return nil
	}
	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}
	if err := pongo2.RegisterFilter(name, filter); err != nil {
		return fmt.Errorf("preview: register filter %q: %w", name, err)
	}
	return nil
}
