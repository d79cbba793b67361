// Package log_destination resolves the daily CloudWatch Logs stream that lines are published to
package log_destination

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/turbot/tailpipe-s3-log-forwarder/constants"
	"github.com/turbot/tailpipe-s3-log-forwarder/types"
)

// CloudWatchLogsAPI is the subset of the CloudWatch Logs client used by [Resolver]
type CloudWatchLogsAPI interface {
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
}

// StreamName returns the stream name for the UTC calendar day of t
func StreamName(t time.Time) string {
	return t.UTC().Format(constants.LogStreamDateFormat)
}

func NewDestination(group string, now time.Time) types.LogDestination {
	return types.LogDestination{
		Group:  group,
		Stream: StreamName(now),
	}
}

// Resolver ensures a destination log stream exists
type Resolver struct {
	client CloudWatchLogsAPI
}

func NewResolver(client CloudWatchLogsAPI) *Resolver {
	return &Resolver{client: client}
}

// Ensure creates the stream, treating an existing stream as success
// There is no existence check first: after the first invocation of a day the
// stream already exists, and the service decides races between invocations
func (r *Resolver) Ensure(ctx context.Context, dest types.LogDestination) error {
	_, err := r.client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(dest.Group),
		LogStreamName: aws.String(dest.Stream),
	})
	if err == nil {
		slog.Info("created log stream", "log_group", dest.Group, "log_stream", dest.Stream)
		return nil
	}

	kind := Classify(err)
	if kind == KindAlreadyExists {
		slog.Debug("log stream already exists", "log_group", dest.Group, "log_stream", dest.Stream)
		return nil
	}
	return &DestinationError{Dest: dest, Kind: kind, Err: err}
}
