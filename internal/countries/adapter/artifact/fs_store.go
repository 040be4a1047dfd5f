package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	apperrors "country-cache/internal/shared/errors"
)

// SummaryFileName is the well-known artifact name inside the artifact dir.
const SummaryFileName = "summary.png"

// FileStore persists the summary artifact on the local filesystem at one
// well-known path, overwriting any previous artifact.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the full artifact path.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, SummaryFileName)
}

// Save writes the artifact, replacing the previous one. The write goes
// through a temp file and rename so readers never see a half-written image.
func (s *FileStore) Save(data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "summary-*.png")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close artifact: %w", err)
	}

	if err := os.Rename(tmpName, s.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace artifact: %w", err)
	}
	return nil
}

// Load returns the current artifact bytes, or ErrArtifactNotFound when no
// refresh has generated one yet.
func (s *FileStore) Load() ([]byte, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}
