package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
)

// minioAPI is the subset of *minio.Client the mirror calls.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinIOMirror mirrors pictures into an S3-compatible MinIO bucket.
type MinIOMirror struct {
	api      minioAPI
	bucket   string
	endpoint string
	secure   bool
}

// NewMinIOMirror wraps client and makes sure bucket exists.
func NewMinIOMirror(ctx context.Context, client *minio.Client, bucket string, secure bool) (*MinIOMirror, error) {
	return newMinIOMirror(ctx, client, client.EndpointURL().Host, bucket, secure)
}

func newMinIOMirror(ctx context.Context, api minioAPI, endpoint, bucket string, secure bool) (*MinIOMirror, error) {
	m := &MinIOMirror{
		api:      api,
		bucket:   bucket,
		endpoint: endpoint,
		secure:   secure,
	}

	if err := m.ensureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}
	return m, nil
}

func (m *MinIOMirror) ensureBucketExists(ctx context.Context) error {
	exists, err := m.api.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := m.api.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// Put uploads r under key and returns the object URL.
func (m *MinIOMirror) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	info, err := m.api.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	scheme := "http"
	if m.secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, m.endpoint, info.Bucket, info.Key), nil
}
