// Package storage persists generated files and uploads and hands back the
// URL they are served from.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"lms/config"
)

type Storage interface {
	Store(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

var ErrInvalidKey = errors.New("invalid storage key")

// New builds the backend selected by STORAGE_DRIVER.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocalStorage(cfg.UploadDir, cfg.PublicBaseURL), nil
	case "s3":
		return NewS3Storage(S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
		})
	case "oss":
		return NewOSSStorage(OSSOptions{
			Endpoint:   cfg.OSSEndpoint,
			AccessKey:  cfg.OSSAccessKey,
			SecretKey:  cfg.OSSSecretKey,
			Bucket:     cfg.OSSBucket,
			PublicBase: cfg.OSSPublicBase,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// DataURI embeds data in a self-contained URL.
func DataURI(contentType string, data []byte) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// CleanKey normalizes key to a relative slash path and rejects traversal.
func CleanKey(key string) (string, error) {
	raw := strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	for _, part := range strings.Split(raw, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	k := strings.TrimLeft(path.Clean("/"+raw), "/")
	if k == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return k, nil
}

// SaveUploadedFile stores a multipart upload under dir with a timestamped
// name and returns its URL.
func SaveUploadedFile(ctx context.Context, st Storage, file *multipart.FileHeader, dir string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	key := path.Join(dir, time.Now().Format("20060102150405.000000000")+ext)

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return st.Store(ctx, key, data, contentType)
}
