// Package acquire implements C1, the Acquirer: fetches a raw disclosure
// document for one (org_id, year) from a named provider and records an
// immutable, content-addressed AcquisitionRecord. Every provider shares one
// polite-fetch discipline: required User-Agent, per-origin rate limiting,
// robots.txt respect, and a streaming SHA-256 over the downloaded bytes.
package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/brunobiangulo/esgevidence"
	"github.com/brunobiangulo/esgevidence/canon"
)

// Provider is the data-driven capability a single org-catalog entry
// selects by name (spec §6 inbound config, §9 "mixin-like extractor
// classes -> capability interface").
type Provider interface {
	// Name identifies the provider, e.g. "local", "sec_edgar", "cdp",
	// "company_ir".
	Name() string
	// Acquire fetches the document for (orgID, year) into destDir and
	// returns the acquisition record. url is the provider-specific hint
	// from the org catalog (a source_url for "local"/"company_ir", unused
	// for "sec_edgar" which resolves its own URL).
	Acquire(ctx context.Context, orgID string, year int, url string, destDir string) (esgevidence.RawDocument, error)
}

// Registry maps provider names to implementations, resolved from the org
// catalog's provider field.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a Registry wired with every provider this pipeline
// ships: local, SEC EDGAR. The org catalog also accepts "cdp" and
// "company_ir", but no provider is registered for them here, so Acquire
// returns an "acquire: unknown provider" error for such entries.
func NewRegistry(cfg esgevidence.Config, client *http.Client) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	r.Register(NewLocalProvider())
	r.Register(NewSECEdgarProvider(cfg, client))
	return r
}

// Register adds or replaces a provider by name.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns the provider for name, or an error if unknown.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("acquire: unknown provider %q", name)
	}
	return p, nil
}

// Acquire resolves the named provider from the catalog entry and runs it.
// This is the single entry point C1 exposes to the orchestrator.
func Acquire(ctx context.Context, reg *Registry, orgID string, year int, providerName, url, destDir string) (esgevidence.RawDocument, error) {
	p, ok := reg.providers[providerName]
	if !ok {
		return esgevidence.RawDocument{}, fmt.Errorf("acquire: unknown provider %q", providerName)
	}
	return p.Acquire(ctx, orgID, year, url, destDir)
}

// streamToFile copies src into a temp file under destDir and atomically
// renames it into place once fully written and hashed, so a cancelled or
// failed fetch never leaves a partial artifact at the final path (spec §5
// "cancellation aborts stage, removes temp files").
func streamToFile(destDir, filename string, src io.Reader) (path string, sha256hex string, size int64, err error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", "", 0, fmt.Errorf("acquire: mkdir %s: %w", destDir, err)
	}
	finalPath := filepath.Join(destDir, filename)
	tmp, err := os.CreateTemp(destDir, ".tmp-acquire-*")
	if err != nil {
		return "", "", 0, fmt.Errorf("acquire: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	hasher := newStreamHasher()
	n, err := io.CopyBuffer(io.MultiWriter(tmp, hasher), struct{ io.Reader }{src}, make([]byte, 64*1024))
	if err != nil {
		return "", "", 0, fmt.Errorf("acquire: write %s: %w", finalPath, err)
	}
	if err = tmp.Close(); err != nil {
		return "", "", 0, fmt.Errorf("acquire: close temp file: %w", err)
	}
	if err = os.Rename(tmpPath, finalPath); err != nil {
		return "", "", 0, fmt.Errorf("acquire: rename into place %s: %w", finalPath, err)
	}
	return finalPath, hasher.sum(), n, nil
}

func nowOrFixed(cfg esgevidence.Config) time.Time {
	return cfg.Now()
}

// hashExistingFile is used by the local provider, which copies a file that
// is already fully on disk rather than streaming a network response.
func hashExistingFile(path string) (string, int64, error) {
	return canon.HashFile(path)
}
