package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage writes files under a base directory and serves them from a
// static URL prefix. Default backend for development.
type LocalStorage struct {
	basePath  string
	publicURL string
}

// NewLocalStorage creates the base directory if needed
func NewLocalStorage(basePath, publicURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalStorage{
		basePath:  basePath,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Store writes the file under a random name, keeping the original
// extension
func (s *LocalStorage) Store(_ context.Context, filename string, data []byte) (string, error) {
	name := uuid.New().String() + filepath.Ext(filename)
	path := filepath.Join(s.basePath, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store file %s: %w", name, err)
	}

	return s.publicURL + "/" + name, nil
}
