package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("minio-store")

// MinioOptions configures an object-store backend.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// Prefix namespaces keys inside the bucket (generated, uploads).
	Prefix string
	// PublicBaseURL is where browsers reach the bucket; defaults to the
	// endpoint itself.
	PublicBaseURL string
}

// MinioStore persists images to an S3-compatible bucket.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	prefix    string
	publicURL string
}

var _ ImageStore = (*MinioStore)(nil)

// NewMinioStore connects to the endpoint and makes sure the bucket exists.
func NewMinioStore(ctx context.Context, opts MinioOptions) (*MinioStore, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("storage: minio endpoint is required")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create minio client: %w", err)
	}
	store := &MinioStore{
		client:    client,
		bucket:    opts.Bucket,
		prefix:    strings.Trim(opts.Prefix, "/"),
		publicURL: publicBaseURL(opts),
	}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// WithPrefix returns a store sharing the client and bucket under another key
// prefix.
func (s *MinioStore) WithPrefix(prefix string) *MinioStore {
	clone := *s
	clone.prefix = strings.Trim(prefix, "/")
	return &clone
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "minio_ensure_bucket")
	defer span.End()
	span.SetAttributes(attribute.String("minio.bucket", s.bucket))

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("storage: check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		// another instance may have won the race
		if exists, checkErr := s.client.BucketExists(ctx, s.bucket); checkErr == nil && exists {
			return nil
		}
		span.RecordError(err)
		return fmt.Errorf("storage: create bucket: %w", err)
	}
	return nil
}

// Save uploads data and returns its public object URL.
func (s *MinioStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	objectKey := s.objectKey(cleanKey)

	ctx, span := tracer.Start(ctx, "minio_upload")
	defer span.End()
	span.SetAttributes(
		attribute.String("minio.bucket", s.bucket),
		attribute.String("minio.key", objectKey),
		attribute.Int("minio.size", len(data)),
	)

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("storage: upload object: %w", err)
	}
	return s.ObjectURL(objectKey), nil
}

func (s *MinioStore) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// ObjectURL builds the browser-facing URL of an object.
func (s *MinioStore) ObjectURL(objectKey string) string {
	escaped := make([]string, 0, 4)
	for _, part := range strings.Split(objectKey, "/") {
		escaped = append(escaped, url.PathEscape(part))
	}
	return s.publicURL + "/" + url.PathEscape(s.bucket) + "/" + strings.Join(escaped, "/")
}

func publicBaseURL(opts MinioOptions) string {
	if base := strings.TrimRight(strings.TrimSpace(opts.PublicBaseURL), "/"); base != "" {
		return base
	}
	scheme := "http"
	if opts.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + strings.TrimSpace(opts.Endpoint)
}
