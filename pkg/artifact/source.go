// Package artifact locates and loads trained emulator artifacts.
//
// Artifacts are fetched through a Source, which abstracts where the trained
// files live. Available sources:
//   - LocalSource — a directory on disk (the distributed model bundle)
//   - HTTPSource  — a remote artifact repository described by a JSON manifest
//
// The Loader resolves a statistic through the registry, fetches the artifact
// and its companion grid file, and hands both to the surrogate decoder.
// Sources are intentionally lightweight: they fetch bytes and report
// not-found distinctly from other failures, leaving all interpretation to
// the loader.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

// ErrNotFound is returned when a requested artifact file does not exist at
// the source. This usually indicates a deployment or packaging defect.
var ErrNotFound = errors.New("artifact not found")

// ErrCorrupt is returned when an artifact exists but cannot be deserialized
// or is internally inconsistent (truncated file, mismatched grid, draws that
// do not cover the basis).
var ErrCorrupt = errors.New("artifact corrupt")

// Source fetches artifact files by name.
type Source interface {
	// Fetch returns the contents of the named file. It returns an error
	// wrapping ErrNotFound when the file does not exist at the source.
	Fetch(ctx context.Context, filename string) ([]byte, error)

	// Name returns a short identifier for the source, e.g. "local", "http".
	Name() string
}

// LocalSource serves artifact files from a directory on disk.
type LocalSource struct {
	// Dir is the directory holding the model bundle.
	Dir string
}

func (s *LocalSource) Name() string { return "local" }

// Fetch reads the named file from the source directory.
func (s *LocalSource) Fetch(ctx context.Context, filename string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.Dir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// HTTPSource fetches artifact files from a remote repository. The repository
// publishes a JSON manifest listing the available files; file lookups go
// through the manifest so a missing entry is reported as ErrNotFound without
// a speculative request.
//
// Manifest format:
//
//	{
//	  "version": 1,
//	  "files": [
//	    {"name": "GSMF_multivariate_model_z_index0.json", "path": "models/GSMF_multivariate_model_z_index0.json"},
//	    ...
//	  ]
//	}
type HTTPSource struct {
	// BaseURL is the repository root, e.g. "https://models.example.org/subgrid".
	BaseURL string

	// ManifestPath is the manifest location relative to BaseURL.
	// Defaults to "manifest.json".
	ManifestPath string

	// Headers are added to every request (auth tokens etc.).
	Headers map[string]string

	// HTTPClient is optional; if nil a default client with timeout is used.
	HTTPClient *http.Client

	mu       sync.Mutex
	manifest []byte
}

func (s *HTTPSource) Name() string { return "http" }

func (s *HTTPSource) client() *http.Client {
	if s.HTTPClient != nil {
		return s.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (s *HTTPSource) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("http status %d fetching %s: %s", resp.StatusCode, url, string(body))
	}

	return io.ReadAll(resp.Body)
}

// loadManifest fetches and caches the repository manifest.
func (s *HTTPSource) loadManifest(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.manifest != nil {
		return s.manifest, nil
	}

	path := s.ManifestPath
	if path == "" {
		path = "manifest.json"
	}

	data, err := s.get(ctx, s.BaseURL+"/"+path)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	if !gjson.GetBytes(data, "files").IsArray() {
		return nil, fmt.Errorf("manifest at %s/%s has no files array", s.BaseURL, path)
	}

	s.manifest = data
	return data, nil
}

// Fetch resolves the named file through the manifest and downloads it.
func (s *HTTPSource) Fetch(ctx context.Context, filename string) ([]byte, error) {
	if s.BaseURL == "" {
		return nil, errors.New("http source: BaseURL is required")
	}

	manifest, err := s.loadManifest(ctx)
	if err != nil {
		return nil, err
	}

	entry := gjson.GetBytes(manifest, fmt.Sprintf(`files.#(name==%q)`, filename))
	if !entry.Exists() {
		return nil, fmt.Errorf("%w: %s not in manifest at %s", ErrNotFound, filename, s.BaseURL)
	}

	path := entry.Get("path").String()
	if path == "" {
		path = filename
	}

	return s.get(ctx, s.BaseURL+"/"+path)
}
