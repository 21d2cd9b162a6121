// Package storage provides object-storage mirrors for durable pictures.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/krishkalaria12/pic-profile-maker/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	BackendNone  = ""
	BackendGCS   = "gcs"
	BackendMinIO = "minio"
)

// Mirror copies a finished picture to object storage and returns where it landed.
type Mirror interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// New builds the mirror selected by cfg.Backend. It returns nil when mirroring is off.
func New(ctx context.Context, cfg config.Storage) (Mirror, error) {
	switch cfg.Backend {
	case BackendNone:
		return nil, nil
	case BackendGCS:
		if cfg.GCS.Bucket == "" {
			return nil, fmt.Errorf("gcs storage requires STORAGE_GCS_BUCKET")
		}
		uploader, err := NewGCSUploader(ctx, cfg.GCS.Bucket)
		if err != nil {
			return nil, err
		}
		return uploader, nil
	case BackendMinIO:
		client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		mirror, err := NewMinIOMirror(ctx, client, cfg.MinIO.Bucket, cfg.MinIO.UseSSL)
		if err != nil {
			return nil, err
		}
		return mirror, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
