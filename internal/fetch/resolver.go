// Package fetch provides the retrieval collaborators of the pipeline:
// version resolution, a local on-disk content cache, and decompressing
// openers for the cached files.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Resolver reports the current version identifier of a source. Versions are
// opaque strings; resolution failure is fatal to the run before any output
// is opened.
type Resolver interface {
	Version(ctx context.Context, source string) (string, error)
}

// StaticResolver serves versions pinned in configuration.
type StaticResolver map[string]string

func (r StaticResolver) Version(_ context.Context, source string) (string, error) {
	v, ok := r[source]
	if !ok || v == "" {
		return "", fmt.Errorf("no version configured for source %q", source)
	}
	return v, nil
}

// HTTPResolver asks a version service for the current release of a source.
// The endpoint must answer GET <base>/<source> with {"version": "..."}.
type HTTPResolver struct {
	Base   string
	Client *http.Client
}

func (r HTTPResolver) Version(ctx context.Context, source string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.Base+"/"+url.PathEscape(source), nil)
	if err != nil {
		return "", fmt.Errorf("build version request: %w", err)
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve %s version: %w", source, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("resolve %s version: unexpected status %s", source, resp.Status)
	}
	var payload struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode %s version: %w", source, err)
	}
	if payload.Version == "" {
		return "", fmt.Errorf("resolve %s version: empty version in response", source)
	}
	return payload.Version, nil
}
