package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"

	"nsockg/internal/util"
)

// Cache is an on-disk store of downloaded source files, keyed by
// (source, version, filename) under Root. Fetching the same key twice
// returns the same path without touching the network.
type Cache struct {
	Root   string
	Client *http.Client
	Log    zerolog.Logger
}

// Fetch returns the local path of the artifact at rawURL, downloading it on
// a cache miss. The download is staged and renamed into place only when
// complete, so a cached file is never a truncated one.
func (c *Cache) Fetch(ctx context.Context, source, version, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %s: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("url %s has no file name", rawURL)
	}
	dest := filepath.Join(c.Root, source, version, name)

	if _, err := os.Stat(dest); err == nil {
		c.Log.Debug().Str("source", source).Str("path", dest).Msg("cache hit")
		return dest, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat cached file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %s", rawURL, resp.Status)
	}

	af, err := util.NewAtomicFile(dest)
	if err != nil {
		return "", err
	}
	defer af.Discard()
	if _, err := io.Copy(af, resp.Body); err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	if err := af.Commit(); err != nil {
		return "", err
	}
	c.Log.Info().Str("source", source).Str("version", version).Str("path", dest).Msg("downloaded")
	return dest, nil
}
