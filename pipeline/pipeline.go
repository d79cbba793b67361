// Package pipeline forwards the lines of a gzip log object to CloudWatch Logs
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/turbot/tailpipe-s3-log-forwarder/artifact_loader"
	"github.com/turbot/tailpipe-s3-log-forwarder/artifact_source"
	"github.com/turbot/tailpipe-s3-log-forwarder/log_destination"
	"github.com/turbot/tailpipe-s3-log-forwarder/log_publisher"
	"github.com/turbot/tailpipe-s3-log-forwarder/notification"
	"github.com/turbot/tailpipe-s3-log-forwarder/types"
)

// Pipeline runs fetch -> decompress -> resolve -> publish for one object at a time
// It holds no per-invocation state, so a single instance serves every invocation
type Pipeline struct {
	source    artifact_source.ObjectSource
	loader    artifact_loader.Loader
	resolver  DestinationResolver
	publisher RecordPublisher
	logGroup  string
	now       func() time.Time
}

type Option func(*Pipeline)

// WithClock sets the function used to read the invocation start time
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

func WithLoader(loader artifact_loader.Loader) Option {
	return func(p *Pipeline) {
		p.loader = loader
	}
}

func New(source artifact_source.ObjectSource, resolver DestinationResolver, publisher RecordPublisher, logGroup string, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:    source,
		loader:    artifact_loader.NewGzipLoader(),
		resolver:  resolver,
		publisher: publisher,
		logGroup:  logGroup,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Summary describes a single run of the pipeline
type Summary struct {
	InvocationID string
	Start        time.Time
	Object       types.ObjectRef
	Destination  types.LogDestination
	Lines        int
	Result       log_publisher.Result
	Timing       *types.TimingCollection
}

// Handle is the Lambda handler: it processes the object named by the first record of the event
func (p *Pipeline) Handle(ctx context.Context, event events.S3Event) error {
	ref, err := notification.Decode(event)
	if err != nil {
		slog.Error("invalid notification", "invocation_id", InvocationID(ctx), "error", err)
		return err
	}
	_, err = p.Process(ctx, ref)
	return err
}

// Process forwards every non-empty line of the object to the stream for the current day
// All records share the invocation start time. Any error ends the run
func (p *Pipeline) Process(ctx context.Context, ref types.ObjectRef) (*Summary, error) {
	start := p.now()
	summary := &Summary{
		InvocationID: InvocationID(ctx),
		Start:        start,
		Object:       ref,
		Destination:  log_destination.NewDestination(p.logGroup, start),
		Timing:       types.NewTimingCollection(),
	}
	logger := slog.With("invocation_id", summary.InvocationID, "source", p.source.Identifier(), "object", ref.String())

	err := p.run(ctx, summary)
	if err != nil {
		logger.Error("failed to forward object",
			"log_group", summary.Destination.Group,
			"log_stream", summary.Destination.Stream,
			"lines", summary.Lines,
			"delivered", summary.Result.Delivered,
			"error", err)
		return summary, err
	}

	logger.Info("forwarded object",
		"log_group", summary.Destination.Group,
		"log_stream", summary.Destination.Stream,
		"lines", summary.Lines,
		"calls", summary.Result.Calls,
		"timing", summary.Timing)
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, summary *Summary) error {
	var data []byte
	err := summary.Timing.Time("fetch", func() error {
		var err error
		data, err = p.source.Fetch(ctx, summary.Object)
		return err
	})
	if err != nil {
		return err
	}

	var text string
	err = summary.Timing.Time("decompress", func() error {
		var err error
		text, err = p.loader.Load(data)
		return err
	})
	if err != nil {
		return err
	}
	// the compressed payload is not needed past this point
	data = nil

	err = summary.Timing.Time("resolve", func() error {
		return p.resolver.Ensure(ctx, summary.Destination)
	})
	if err != nil {
		return err
	}

	lines := log_publisher.SplitLines(text)
	summary.Lines = len(lines)
	records := log_publisher.BuildRecords(lines, summary.Start)

	return summary.Timing.Time("publish", func() error {
		var err error
		summary.Result, err = p.publisher.Publish(ctx, summary.Destination, records)
		return err
	})
}
