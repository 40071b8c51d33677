package adapter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"quizdeck/internal/config"
)

// LocalFileStorage implements domain.FileStorage on the local filesystem.
// Paths returned by Save are relative to the media directory so the stored
// value stays valid if the directory moves.
type LocalFileStorage struct {
	dir     string
	baseURL string
}

// NewLocalFileStorage creates the media directory if needed and returns a
// new instance of LocalFileStorage.
func NewLocalFileStorage(cfg config.MediaConfig) (*LocalFileStorage, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", cfg.Dir, err)
	}
	return &LocalFileStorage{
		dir:     cfg.Dir,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Save writes contents under name inside the media directory. The name is
// flattened to its base to keep callers from escaping the directory.
func (s *LocalFileStorage) Save(ctx context.Context, name string, contents io.Reader) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	name = filepath.Base(name)
	dst := filepath.Join(s.dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", dst, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, contents); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write file %s: %w", dst, err)
	}
	return name, nil
}

// URL turns a stored path into a client-reachable location.
func (s *LocalFileStorage) URL(path string) string {
	return s.baseURL + "/" + path
}

// Remove deletes a stored file. A missing file is not an error.
func (s *LocalFileStorage) Remove(ctx context.Context, path string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(path)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file %s: %w", path, err)
	}
	return nil
}
