package artifact_source

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"cloud.google.com/go/storage"
	"github.com/turbot/tailpipe-s3-log-forwarder/types"
)

const (
	GcpStorageBucketSourceIdentifier = "gcp_storage_bucket"
)

// GcsAPI is the subset of GCS used by [GcpStorageBucketSource]
type GcsAPI interface {
	NewObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Close() error
}

// gcsClient adapts *storage.Client to GcsAPI
type gcsClient struct {
	client *storage.Client
}

func (c gcsClient) NewObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	reader, err := c.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	return reader, nil
}

func (c gcsClient) Close() error {
	return c.client.Close()
}

// GcpStorageBucketSource is an [ObjectSource] implementation that reads objects from a GCS bucket
type GcpStorageBucketSource struct {
	client GcsAPI
}

func NewGcpStorageBucketSource(ctx context.Context, conn *GcpConnection) (*GcpStorageBucketSource, error) {
	opts, err := conn.GetClientOptions()
	if err != nil {
		return nil, fmt.Errorf("failed setting GCP Storage client config: %w", err)
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP Storage client: %w", err)
	}
	return NewGcpStorageBucketSourceFromClient(gcsClient{client: client}), nil
}

func NewGcpStorageBucketSourceFromClient(client GcsAPI) *GcpStorageBucketSource {
	return &GcpStorageBucketSource{client: client}
}

func (s *GcpStorageBucketSource) Identifier() string {
	return GcpStorageBucketSourceIdentifier
}

func (s *GcpStorageBucketSource) Close() error {
	return s.client.Close()
}

func (s *GcpStorageBucketSource) Fetch(ctx context.Context, ref types.ObjectRef) ([]byte, error) {
	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("%w gs://%s, %w", ErrFetch, ref, err)
	}

	reader, err := s.client.NewObjectReader(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return nil, fmt.Errorf("%w gs://%s, %w", ErrFetch, ref, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w gs://%s: failed to read object, %w", ErrFetch, ref, err)
	}

	slog.Debug("fetched object", "object", "gs://"+ref.String(), "bytes", len(data))
	return data, nil
}
