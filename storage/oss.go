package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type OSSOptions struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	PublicBase string
}

type OSSStorage struct {
	bucket     *oss.Bucket
	endpoint   string
	bucketName string
	publicBase string
}

func NewOSSStorage(opts OSSOptions) (*OSSStorage, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" || opts.Bucket == "" {
		return nil, errors.New("missing env: OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	client, err := oss.New(opts.Endpoint, opts.AccessKey, opts.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	return &OSSStorage{
		bucket:     bkt,
		endpoint:   opts.Endpoint,
		bucketName: opts.Bucket,
		publicBase: opts.PublicBase,
	}, nil
}

func (s *OSSStorage) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	k, err := CleanKey(key)
	if err != nil {
		return "", err
	}

	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
	}
	if err := s.bucket.PutObject(k, bytes.NewReader(data), opts...); err != nil {
		return "", fmt.Errorf("oss put %s: %w", k, err)
	}
	return s.PublicURL(k), nil
}

func (s *OSSStorage) PublicURL(key string) string {
	if base := strings.TrimSpace(s.publicBase); base != "" {
		return strings.TrimRight(base, "/") + "/" + key
	}
	end := strings.TrimPrefix(s.endpoint, "https://")
	end = strings.TrimPrefix(end, "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.bucketName, end, key)
}
