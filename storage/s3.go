package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type S3Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

type S3Storage struct {
	client   s3iface.S3API
	bucket   string
	endpoint string
	region   string
	useSSL   bool
}

func NewS3Storage(opts S3Options) (*S3Storage, error) {
	if opts.Bucket == "" {
		return nil, errors.New("missing env: S3_BUCKET")
	}

	s3Config := &aws.Config{
		Region:           aws.String(opts.Region),
		DisableSSL:       aws.Bool(!opts.UseSSL),
		S3ForcePathStyle: aws.Bool(opts.Endpoint != ""),
	}
	if opts.Endpoint != "" {
		s3Config.Endpoint = aws.String(opts.Endpoint)
	}
	if opts.AccessKey != "" {
		s3Config.Credentials = credentials.NewStaticCredentials(opts.AccessKey, opts.SecretKey, "")
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("s3 session: %w", err)
	}

	return &S3Storage{
		client:   s3.New(sess),
		bucket:   opts.Bucket,
		endpoint: opts.Endpoint,
		region:   opts.Region,
		useSSL:   opts.UseSSL,
	}, nil
}

func (s *S3Storage) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	k, err := CleanKey(key)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(k),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", k, err)
	}
	return s.objectURL(k), nil
}

func (s *S3Storage) objectURL(key string) string {
	if s.endpoint == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	}
	end := strings.TrimRight(s.endpoint, "/")
	if !strings.HasPrefix(end, "http://") && !strings.HasPrefix(end, "https://") {
		scheme := "https://"
		if !s.useSSL {
			scheme = "http://"
		}
		end = scheme + end
	}
	return end + "/" + s.bucket + "/" + key
}
