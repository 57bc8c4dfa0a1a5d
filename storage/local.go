package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes under Dir; fiber serves Dir at BaseURL.
type LocalStorage struct {
	Dir     string
	BaseURL string
}

func NewLocalStorage(dir, baseURL string) *LocalStorage {
	return &LocalStorage{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStorage) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	k, err := CleanKey(key)
	if err != nil {
		return "", err
	}

	filePath := filepath.Join(s.Dir, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", err
	}

	// Write to a temp file first so readers never see a partial PDF
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, filePath); err != nil {
		os.Remove(tmp)
		return "", err
	}

	return s.BaseURL + "/" + k, nil
}
