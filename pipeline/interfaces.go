package pipeline

import (
	"context"

	"github.com/turbot/tailpipe-s3-log-forwarder/log_publisher"
	"github.com/turbot/tailpipe-s3-log-forwarder/types"
)

// DestinationResolver ensures the destination log stream exists
type DestinationResolver interface {
	Ensure(context.Context, types.LogDestination) error
}

// RecordPublisher publishes records to a destination in order
type RecordPublisher interface {
	Publish(context.Context, types.LogDestination, []types.LogRecord) (log_publisher.Result, error)
}
