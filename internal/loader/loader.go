// Package loader implements source.Loader over files, fs.FS and HTTP.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/source"
)

// ErrTooLarge is returned when a document exceeds the configured size cap.
var ErrTooLarge = errors.New("loader: document exceeds size limit")

// Loader delegates to the file, fs.FS or HTTP strategy of a source.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	maxBytes  int64
}

var _ source.Loader = (*Loader)(nil)

// New constructs a Loader from resolved options.
func New(options source.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
		maxBytes:  options.MaxBytes,
	}
}

// Load fetches the payload behind src.
func (l *Loader) Load(ctx context.Context, src source.Source) (source.Document, error) {
	if src == nil {
		return source.Document{}, errors.New("loader: source is nil")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case source.KindFile:
		data, err = loadFile(ctx, src.Location())
	case source.KindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case source.KindURL:
		if !l.allowHTTP {
			return source.Document{}, errors.New("loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout, l.maxBytes)
	default:
		err = fmt.Errorf("loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return source.Document{}, err
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return source.Document{}, fmt.Errorf("%w: %s", ErrTooLarge, src.Location())
	}
	return source.NewDocument(src, data)
}
