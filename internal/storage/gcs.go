package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	ierr "github.com/formstamp/formstamp/internal/errors"
)

// GCSStore implements BlobStore on a Google Cloud Storage bucket.
type GCSStore struct {
	client     *storage.Client
	bucketName string
}

var _ BlobStore = (*GCSStore)(nil)

func NewGCSStore(ctx context.Context, bucketName, credentialsPath string) (*GCSStore, error) {
	var client *storage.Client
	var err error

	if credentialsPath != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsPath))
	} else {
		client, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStore{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (g *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj := g.client.Bucket(g.bucketName).Object(key)

	reader, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ierr.WithError(err).
				WithHintf("blob %s does not exist", key).
				Mark(ierr.ErrBlobNotFound)
		}
		return nil, ierr.WithError(err).
			WithHintf("failed to open blob %s", key).
			Mark(ierr.ErrBlobNotFound)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("failed to read blob %s", key).
			Mark(ierr.ErrBlobNotFound)
	}

	return content, nil
}

func (g *GCSStore) Put(ctx context.Context, key string, content []byte, contentType string) error {
	obj := g.client.Bucket(g.bucketName).Object(key)
	writer := obj.NewWriter(ctx)

	if contentType != "" {
		writer.ContentType = contentType
	}

	if _, err := io.Copy(writer, bytes.NewReader(content)); err != nil {
		writer.Close()
		return ierr.WithError(err).
			WithHintf("failed to write blob %s", key).
			Mark(ierr.ErrStorage)
	}

	if err := writer.Close(); err != nil {
		return ierr.WithError(err).
			WithHintf("failed to finalize blob %s", key).
			Mark(ierr.ErrStorage)
	}

	return nil
}

func (g *GCSStore) Delete(ctx context.Context, key string) error {
	obj := g.client.Bucket(g.bucketName).Object(key)
	return obj.Delete(ctx)
}

func (g *GCSStore) Close() error {
	return g.client.Close()
}
