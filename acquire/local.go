package acquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brunobiangulo/esgevidence"
)

// localProvider "acquires" a document that is already on disk (the org
// catalog's pdf_path entry). No network I/O, no robots/rate-limit policy
// applies; it still produces the same content-addressed AcquisitionRecord
// shape as a remote provider so downstream stages never special-case it.
type localProvider struct{}

// NewLocalProvider constructs the local filesystem provider.
func NewLocalProvider() Provider { return &localProvider{} }

func (p *localProvider) Name() string { return "local" }

func (p *localProvider) Acquire(ctx context.Context, orgID string, year int, path string, destDir string) (esgevidence.RawDocument, error) {
	if path == "" {
		return esgevidence.RawDocument{}, newAcquireError("input_missing", "local provider requires pdf_path", nil)
	}
	src, err := os.Open(path)
	if err != nil {
		return esgevidence.RawDocument{}, newAcquireError("input_missing", fmt.Sprintf("cannot open local source %s", path), err)
	}
	defer src.Close()

	filename := filepath.Base(path)
	localPath, sha, size, err := streamToFile(destDir, filename, src)
	if err != nil {
		return esgevidence.RawDocument{}, newAcquireError("transport_error", "failed writing local copy", err)
	}

	return esgevidence.RawDocument{
		LocalPath: localPath,
		SourceURL: "file://" + path,
		SHA256:    sha,
		Size:      size,
		Provider:  p.Name(),
	}, nil
}
