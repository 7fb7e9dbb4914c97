// Package zenodo uploads finished run artifacts as a versioned Zenodo
// deposition. Publication failure never invalidates the local files; the
// caller just reports it.
package zenodo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Creator identifies one dataset author in a deposition.
type Creator struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation,omitempty"`
	ORCID       string `json:"orcid,omitempty"`
}

// Metadata is the fixed descriptive record attached to every release.
type Metadata struct {
	Title       string    `json:"title"`
	UploadType  string    `json:"upload_type"`
	Description string    `json:"description"`
	Creators    []Creator `json:"creators"`
}

// KGDeposition is the deposition record for knowledge-graph releases.
func KGDeposition() Metadata {
	return Metadata{
		Title:       "Not Scared of Chemistry Knowledge Graph",
		UploadType:  "dataset",
		Description: "A combination of ExCAPE-DB, BioGRID, HomoloGene, and chemical similarities in a knowledge graph.",
		Creators: []Creator{
			{
				Name:        "Hoyt, Charles Tapley",
				Affiliation: "Harvard Medical School",
				ORCID:       "0000-0003-4423-4370",
			},
		},
	}
}

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Log     zerolog.Logger
}

type deposition struct {
	ID    int64 `json:"id"`
	Links struct {
		HTML string `json:"html"`
	} `json:"links"`
}

// Publish creates a deposition draft, uploads every artifact, and publishes
// the release. It returns the record URL of the published deposition.
func (c *Client) Publish(ctx context.Context, md Metadata, paths ...string) (string, error) {
	dep, err := c.createDeposition(ctx, md)
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		if err := c.uploadFile(ctx, dep.ID, p); err != nil {
			return "", err
		}
		c.Log.Info().Str("file", filepath.Base(p)).Int64("deposition", dep.ID).Msg("uploaded")
	}
	published, err := c.publishDeposition(ctx, dep.ID)
	if err != nil {
		return "", err
	}
	return published.Links.HTML, nil
}

func (c *Client) createDeposition(ctx context.Context, md Metadata) (deposition, error) {
	body, err := json.Marshal(map[string]any{"metadata": md})
	if err != nil {
		return deposition{}, fmt.Errorf("encode deposition metadata: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/deposit/depositions", bytes.NewReader(body))
	if err != nil {
		return deposition{}, fmt.Errorf("build deposition request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return deposition{}, fmt.Errorf("create deposition: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return deposition{}, fmt.Errorf("create deposition: unexpected status %s", resp.Status)
	}
	var dep deposition
	if err := json.NewDecoder(resp.Body).Decode(&dep); err != nil {
		return deposition{}, fmt.Errorf("decode deposition: %w", err)
	}
	return dep, nil
}

func (c *Client) uploadFile(ctx context.Context, depID int64, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := func() error {
			if err := mw.WriteField("name", filepath.Base(path)); err != nil {
				return err
			}
			part, err := mw.CreateFormFile("file", filepath.Base(path))
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, f); err != nil {
				return err
			}
			return mw.Close()
		}()
		pw.CloseWithError(err)
	}()

	url := fmt.Sprintf("%s/api/deposit/depositions/%d/files", c.BaseURL, depID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.auth(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", filepath.Base(path), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("upload %s: unexpected status %s", filepath.Base(path), resp.Status)
	}
	return nil
}

func (c *Client) publishDeposition(ctx context.Context, depID int64) (deposition, error) {
	url := fmt.Sprintf("%s/api/deposit/depositions/%d/actions/publish", c.BaseURL, depID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return deposition{}, fmt.Errorf("build publish request: %w", err)
	}
	c.auth(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return deposition{}, fmt.Errorf("publish deposition: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return deposition{}, fmt.Errorf("publish deposition: unexpected status %s", resp.Status)
	}
	var dep deposition
	if err := json.NewDecoder(resp.Body).Decode(&dep); err != nil {
		return deposition{}, fmt.Errorf("decode published deposition: %w", err)
	}
	return dep, nil
}

func (c *Client) auth(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}
