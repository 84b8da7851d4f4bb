package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

func loadHTTP(ctx context.Context, client *http.Client, url string, timeout time.Duration, maxBytes int64) ([]byte, error) {
	if client == nil {
		return nil, errors.New("loader: http client is not configured")
	}
	if url == "" {
		return nil, errors.New("loader: url is required")
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("loader: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.1")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loader: fetch %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("loader: unexpected status %s from %s", resp.Status, url)
	}

	var body io.Reader = resp.Body
	if maxBytes > 0 {
		// One extra byte lets Load detect an oversized payload.
		body = io.LimitReader(resp.Body, maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("loader: read body: %w", err)
	}
	return data, nil
}
