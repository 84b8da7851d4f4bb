package source

import (
	"context"
	"io/fs"
	"net/http"
	"time"
)

// Loader fetches template definitions.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures how a Loader resolves sources. HTTP stays
// disabled unless a client or the fallback is configured.
type LoaderOptions struct {
	FileSystem        fs.FS
	HTTPClient        *http.Client
	AllowHTTPFallback bool
	RequestTimeout    time.Duration
	// MaxBytes caps the size of a loaded document. Zero means no limit.
	MaxBytes int64
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem serves FS sources from files.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote definitions.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client and timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// WithMaxBytes caps the size of loaded documents.
func WithMaxBytes(limit int64) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.MaxBytes = limit
	}
}

// NewLoaderOptions applies options over the zero configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
