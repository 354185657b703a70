package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ArtifactStore keeps generated report artifacts on local disk, each under a
// path relative to a single base directory. Artifacts are disposable: they
// can be regenerated from the database, so expiry just deletes them.
type ArtifactStore struct {
	baseDir string
}

// NewArtifactStore creates the base directory if needed.
func NewArtifactStore(baseDir string) (*ArtifactStore, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &ArtifactStore{baseDir: baseDir}, nil
}

// Save writes a rendered artifact and returns its relative path.
func (s *ArtifactStore) Save(name string, data []byte) (string, error) {
	path := s.abs(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare artifact directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return name, nil
}

// SaveStream writes an artifact from a reader, for renderers that stream.
func (s *ArtifactStore) SaveStream(name string, r io.Reader) (string, error) {
	path := s.abs(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare artifact directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write artifact stream: %w", err)
	}
	return name, nil
}

// Open returns a read-only handle for serving a stored artifact.
func (s *ArtifactStore) Open(name string) (*os.File, error) {
	file, err := os.Open(s.abs(name))
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	return file, nil
}

// Delete removes an artifact. Missing files are not an error.
func (s *ArtifactStore) Delete(name string) error {
	if err := os.Remove(s.abs(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete artifact: %w", err)
	}
	return nil
}

// CleanupOlderThan deletes artifacts whose mtime predates the TTL and returns
// the relative paths it removed, so callers can expire the matching job rows.
func (s *ArtifactStore) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	removed := make([]string, 0)
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			rel = path
		}
		removed = append(removed, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup artifacts: %w", err)
	}
	return removed, nil
}

// Path resolves an artifact name to its absolute location on disk.
func (s *ArtifactStore) Path(name string) string {
	return s.abs(name)
}

func (s *ArtifactStore) abs(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.baseDir, name)
}
