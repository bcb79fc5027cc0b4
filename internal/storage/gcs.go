package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// StorageGCS is a Google Cloud Storage-based blob store.
type StorageGCS struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
	prefix string
	logger *zap.Logger
}

func NewStorageGCS(ctx context.Context, logger *zap.Logger, bucketName, prefix string) (*StorageGCS, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}
	return &StorageGCS{
		client: client,
		bucket: client.Bucket(bucketName),
		prefix: prefix,
		logger: logger.Named("storage_gcs"),
	}, nil
}

func (s *StorageGCS) WriteFile(ctx context.Context, name string) (io.WriteCloser, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	key := objectKey(s.prefix, name)
	s.logger.Debug("uploading object", zap.String("key", key))
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType(name)
	return w, nil
}

func (s *StorageGCS) ReadFile(ctx context.Context, name string) (*File, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	r, err := s.bucket.Object(objectKey(s.prefix, name)).NewReader(ctx)
	if err != nil {
		return nil, gcsError(name, err)
	}
	return &File{
		Reader:     r,
		ModifiedAt: r.Attrs.LastModified,
		Size:       r.Attrs.Size,
	}, nil
}

func (s *StorageGCS) DeleteFile(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	key := objectKey(s.prefix, name)
	s.logger.Debug("deleting object", zap.String("key", key))
	if err := s.bucket.Object(key).Delete(ctx); err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return err
	}
	return nil
}

// Close releases the underlying client.
func (s *StorageGCS) Close() error {
	return s.client.Close()
}

func gcsError(name string, err error) error {
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return err
}
