package storage

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Options select and configure a Store backend.
type Options struct {
	// Backend is "fs", "s3" or "gcs".
	Backend  string
	Root     string
	Bucket   string
	Region   string
	Prefix   string
	Endpoint string
}

// New opens the configured backend.
func New(ctx context.Context, logger *zap.Logger, opts Options) (Store, error) {
	switch opts.Backend {
	case "fs", "":
		return NewStorageFS(logger, opts.Root)
	case "s3":
		return NewStorageS3(logger, S3Options{
			Bucket:   opts.Bucket,
			Region:   opts.Region,
			Prefix:   opts.Prefix,
			Endpoint: opts.Endpoint,
		})
	case "gcs":
		return NewStorageGCS(ctx, logger, opts.Bucket, opts.Prefix)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

// Close releases backend clients. Stores without resources are left alone.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
