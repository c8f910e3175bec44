package storage

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

type MinioOpts func(c *minioConfig)

type minioConfig struct {
	endpoint        string
	bucket          string
	accessKey       string
	secretAccessKey string
	useSSL          bool
}

func newConfig(opts ...MinioOpts) *minioConfig {
	cfg := &minioConfig{
		useSSL: false,
	}

	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// MinioStorage maps locators to objects of a single bucket.
type MinioStorage struct {
	cfg    *minioConfig
	client *minio.Client
}

func NewMinioStorage(opts ...MinioOpts) (*MinioStorage, error) {
	cfg := newConfig(opts...)

	minioClient, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretAccessKey, ""),
		Secure: cfg.useSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create minio client")
	}

	return &MinioStorage{cfg: cfg, client: minioClient}, nil
}

func objectName(locator string) string {
	return strings.TrimPrefix(locator, "/")
}

func (s *MinioStorage) Exists(ctx context.Context, locator string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.cfg.bucket, objectName(locator), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to stat object %s", locator)
	}
	return true, nil
}

func (s *MinioStorage) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	object, err := s.client.GetObject(ctx, s.cfg.bucket, objectName(locator), minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get object %s", locator)
	}
	return object, nil
}

func (s *MinioStorage) Type() string {
	return "minio"
}

func WithEndpoint(endpoint string) MinioOpts {
	return func(c *minioConfig) {
		c.endpoint = endpoint
	}
}

func WithBucket(bucket string) MinioOpts {
	return func(c *minioConfig) {
		c.bucket = bucket
	}
}

func WithAccessKey(accessKey string) MinioOpts {
	return func(c *minioConfig) {
		c.accessKey = accessKey
	}
}

func WithSecretKey(secretKey string) MinioOpts {
	return func(c *minioConfig) {
		c.secretAccessKey = secretKey
	}
}

func WithSSL(useSSL bool) MinioOpts {
	return func(c *minioConfig) {
		c.useSSL = useSSL
	}
}
