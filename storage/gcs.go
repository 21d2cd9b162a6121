package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
)

const (
	uploadTimeout = 50 * time.Second
	gcsPublicURL  = "https://storage.googleapis.com/%s/%s"
)

// GCSUploader mirrors pictures into a Google Cloud Storage bucket.
type GCSUploader struct {
	cl         *storage.Client
	bucketName string
	uploadPath string
}

// NewGCSUploader creates a client from the ambient Google credentials, falling
// back to ./credentials.json.
func NewGCSUploader(ctx context.Context, bucketName string) (*GCSUploader, error) {
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "./credentials.json")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}

	return &GCSUploader{
		cl:         client,
		bucketName: bucketName,
		uploadPath: "pictures/",
	}, nil
}

// Put uploads r under key and returns the object's public URL.
func (u *GCSUploader) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	objectPath := u.uploadPath + key

	wc := u.cl.Bucket(u.bucketName).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return "", fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("Writer.Close: %w", err)
	}

	return fmt.Sprintf(gcsPublicURL, u.bucketName, objectPath), nil
}

func (u *GCSUploader) Close() error {
	return u.cl.Close()
}
