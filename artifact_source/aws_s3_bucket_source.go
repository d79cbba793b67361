package artifact_source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/turbot/tailpipe-s3-log-forwarder/types"
)

const (
	AwsS3BucketSourceIdentifier = "aws_s3_bucket"
)

// ErrFetch is returned (wrapping the underlying error) when an object cannot be read
var ErrFetch = errors.New("failed to fetch object")

// S3API is the subset of the S3 client used by [AwsS3BucketSource]
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// AwsS3BucketSource is an [ObjectSource] implementation that reads objects from S3
type AwsS3BucketSource struct {
	client S3API
}

func NewAwsS3BucketSource(client S3API) *AwsS3BucketSource {
	return &AwsS3BucketSource{client: client}
}

// NewAwsS3BucketSourceFromConfig creates the source with an S3 client built from the aws config
func NewAwsS3BucketSourceFromConfig(cfg aws.Config, conn *AwsConnection) *AwsS3BucketSource {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = conn.UsePathStyle()
	})
	return NewAwsS3BucketSource(client)
}

func (s *AwsS3BucketSource) Identifier() string {
	return AwsS3BucketSourceIdentifier
}

// Fetch reads the whole object in a single GetObject call
// Errors are not retried here - redelivery of the notification is left to the caller
func (s *AwsS3BucketSource) Fetch(ctx context.Context, ref types.ObjectRef) ([]byte, error) {
	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("%w s3://%s, %w", ErrFetch, ref, err)
	}

	getObjectOutput, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w s3://%s, %w", ErrFetch, ref, err)
	}
	defer getObjectOutput.Body.Close()

	data, err := io.ReadAll(getObjectOutput.Body)
	if err != nil {
		return nil, fmt.Errorf("%w s3://%s: failed to read body, %w", ErrFetch, ref, err)
	}

	slog.Debug("fetched object", "object", "s3://"+ref.String(), "bytes", len(data))
	return data, nil
}
