// Package log_publisher writes log records to a CloudWatch Logs stream
package log_publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/turbot/tailpipe-s3-log-forwarder/rate_limiter"
	"github.com/turbot/tailpipe-s3-log-forwarder/types"
)

// ErrRejected is returned when the service accepts a call but rejects some of its events
var ErrRejected = errors.New("log events rejected")

// CloudWatchLogsAPI is the subset of the CloudWatch Logs client used by [Publisher]
type CloudWatchLogsAPI interface {
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// Result reports how far publishing got
type Result struct {
	// records accepted by the service
	Delivered int
	// PutLogEvents calls made, including a failed one
	Calls int
}

// PublishError is returned when a PutLogEvents call fails
// Index is the position of the first record of the failed call
type PublishError struct {
	Index int
	Count int
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish records %d-%d, %s", e.Index, e.Index+e.Count-1, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

type Publisher struct {
	client  CloudWatchLogsAPI
	policy  BatchPolicy
	limiter *rate_limiter.APILimiter
}

type PublisherOption func(*Publisher)

func WithBatchPolicy(policy BatchPolicy) PublisherOption {
	return func(p *Publisher) {
		p.policy = policy.normalize()
	}
}

// WithLimiter paces PutLogEvents calls; a nil limiter is ignored
func WithLimiter(limiter *rate_limiter.APILimiter) PublisherOption {
	return func(p *Publisher) {
		p.limiter = limiter
	}
}

func NewPublisher(client CloudWatchLogsAPI, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		client: client,
		policy: DefaultBatchPolicy(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish sends the records to the destination in order, one call at a time
// The first failure stops publishing: later records are not attempted and records already
// delivered are not rolled back. The same applies when ctx is cancelled between calls
func (p *Publisher) Publish(ctx context.Context, dest types.LogDestination, records []types.LogRecord) (Result, error) {
	var res Result
	for _, batch := range Batches(records, p.policy) {
		if err := ctx.Err(); err != nil {
			return res, stoppedError(res, len(records), err)
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return res, stoppedError(res, len(records), fmt.Errorf("error acquiring rate limiter: %w", err))
			}
		}

		res.Calls++
		err := p.put(ctx, dest, batch)
		if p.limiter != nil {
			p.limiter.Release()
		}
		if err != nil {
			return res, &PublishError{Index: res.Delivered, Count: len(batch), Err: err}
		}
		res.Delivered += len(batch)
	}

	slog.Debug("published records", "log_group", dest.Group, "log_stream", dest.Stream, "records", res.Delivered, "calls", res.Calls)
	return res, nil
}

// stoppedError reports publishing that ended before a call was made for the next batch
func stoppedError(res Result, total int, err error) error {
	return fmt.Errorf("publishing stopped after %d of %d records, %w", res.Delivered, total, err)
}

// put makes exactly one PutLogEvents call
func (p *Publisher) put(ctx context.Context, dest types.LogDestination, batch []types.LogRecord) error {
	events := make([]cwtypes.InputLogEvent, len(batch))
	for i, r := range batch {
		events[i] = cwtypes.InputLogEvent{
			Message:   aws.String(r.Message),
			Timestamp: aws.Int64(r.Timestamp),
		}
	}

	output, err := p.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(dest.Group),
		LogStreamName: aws.String(dest.Stream),
		LogEvents:     events,
	})
	if err != nil {
		return err
	}
	return rejectedError(output)
}

func rejectedError(output *cloudwatchlogs.PutLogEventsOutput) error {
	if output == nil || output.RejectedLogEventsInfo == nil {
		return nil
	}
	info := output.RejectedLogEventsInfo
	if info.TooOldLogEventEndIndex == nil && info.TooNewLogEventStartIndex == nil && info.ExpiredLogEventEndIndex == nil {
		return nil
	}
	return fmt.Errorf("%w: too_old_end_index=%d too_new_start_index=%d expired_end_index=%d",
		ErrRejected,
		aws.ToInt32(info.TooOldLogEventEndIndex),
		aws.ToInt32(info.TooNewLogEventStartIndex),
		aws.ToInt32(info.ExpiredLogEventEndIndex))
}
