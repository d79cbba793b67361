package log_publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turbot/tailpipe-s3-log-forwarder/rate_limiter"
	"github.com/turbot/tailpipe-s3-log-forwarder/types"
)

type putCall struct {
	group    string
	stream   string
	messages []string
	times    []int64
}

// fakeLogs records PutLogEvents calls; failOn is the 1-based call number that fails
type fakeLogs struct {
	calls    []putCall
	failOn   int
	err      error
	rejected *cwtypes.RejectedLogEventsInfo
	onCall   func(n int)
}

func (f *fakeLogs) PutLogEvents(_ context.Context, params *cloudwatchlogs.PutLogEventsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error) {
	c := putCall{group: aws.ToString(params.LogGroupName), stream: aws.ToString(params.LogStreamName)}
	for _, e := range params.LogEvents {
		c.messages = append(c.messages, aws.ToString(e.Message))
		c.times = append(c.times, aws.ToInt64(e.Timestamp))
	}
	f.calls = append(f.calls, c)
	n := len(f.calls)
	if f.onCall != nil {
		f.onCall(n)
	}
	if n == f.failOn {
		return nil, f.err
	}
	return &cloudwatchlogs.PutLogEventsOutput{RejectedLogEventsInfo: f.rejected}, nil
}

var (
	testDest = types.LogDestination{Group: "ALB-access-log", Stream: "2024-03-01"}
	testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func records(lines ...string) []types.LogRecord {
	return BuildRecords(lines, testTime)
}

func TestPublisher_OneCallPerRecord(t *testing.T) {
	logs := &fakeLogs{}
	p := NewPublisher(logs)

	res, err := p.Publish(context.Background(), testDest, BuildRecords(SplitLines("GET /a\n\nGET /b\n"), testTime))
	require.NoError(t, err)

	assert.Equal(t, Result{Delivered: 2, Calls: 2}, res)
	require.Len(t, logs.calls, 2)
	assert.Equal(t, []string{"GET /a"}, logs.calls[0].messages)
	assert.Equal(t, []string{"GET /b"}, logs.calls[1].messages)
	for _, c := range logs.calls {
		assert.Equal(t, "ALB-access-log", c.group)
		assert.Equal(t, "2024-03-01", c.stream)
		assert.Equal(t, []int64{testTime.UnixMilli()}, c.times)
	}
}

func TestPublisher_StopsOnFirstFailure(t *testing.T) {
	logs := &fakeLogs{failOn: 3, err: errors.New("InvalidParameterException: event too large")}
	p := NewPublisher(logs)

	res, err := p.Publish(context.Background(), testDest, records("1", "2", "3", "4", "5"))
	require.Error(t, err)

	var pubErr *PublishError
	require.True(t, errors.As(err, &pubErr))
	assert.Equal(t, 2, pubErr.Index)
	assert.Equal(t, 1, pubErr.Count)
	assert.Equal(t, Result{Delivered: 2, Calls: 3}, res)

	require.Len(t, logs.calls, 3, "records after the failed one must not be attempted")
	assert.Equal(t, []string{"3"}, logs.calls[2].messages)
}

func TestPublisher_Batched(t *testing.T) {
	logs := &fakeLogs{}
	p := NewPublisher(logs, WithBatchPolicy(BatchPolicy{MaxEvents: 2, MaxBytes: 1048576}))

	res, err := p.Publish(context.Background(), testDest, records("a", "b", "c", "d", "e"))
	require.NoError(t, err)

	assert.Equal(t, Result{Delivered: 5, Calls: 3}, res)
	require.Len(t, logs.calls, 3)
	assert.Equal(t, []string{"a", "b"}, logs.calls[0].messages)
	assert.Equal(t, []string{"c", "d"}, logs.calls[1].messages)
	assert.Equal(t, []string{"e"}, logs.calls[2].messages)
}

func TestPublisher_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// cancel once the second call has been made
	logs := &fakeLogs{onCall: func(n int) {
		if n == 2 {
			cancel()
		}
	}}
	p := NewPublisher(logs)

	res, err := p.Publish(ctx, testDest, records("1", "2", "3", "4"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Result{Delivered: 2, Calls: 2}, res)
	assert.Len(t, logs.calls, 2)
}

func TestPublisher_Rejected(t *testing.T) {
	logs := &fakeLogs{rejected: &cwtypes.RejectedLogEventsInfo{TooOldLogEventEndIndex: aws.Int32(0)}}
	p := NewPublisher(logs)

	res, err := p.Publish(context.Background(), testDest, records("1", "2"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, 0, res.Delivered)
	assert.Len(t, logs.calls, 1)
}

func TestPublisher_EmptyRejectedInfoIsSuccess(t *testing.T) {
	logs := &fakeLogs{rejected: &cwtypes.RejectedLogEventsInfo{}}

	res, err := NewPublisher(logs).Publish(context.Background(), testDest, records("1"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Delivered)
}

func TestPublisher_NoRecords(t *testing.T) {
	logs := &fakeLogs{}

	res, err := NewPublisher(logs).Publish(context.Background(), testDest, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Empty(t, logs.calls)
}

func TestPublisher_WithLimiter(t *testing.T) {
	logs := &fakeLogs{}
	limiter := rate_limiter.NewAPILimiter(&rate_limiter.Definition{Name: "test", FillRate: 1000, BucketSize: 1, MaxConcurrency: 1})
	p := NewPublisher(logs, WithLimiter(limiter))

	_, err := p.Publish(context.Background(), testDest, records("1", "2", "3"))
	require.NoError(t, err)
	assert.Len(t, logs.calls, 3)
	// every slot has been released
	assert.True(t, limiter.TryToAcquireSemaphore())
	limiter.Release()
}

func TestPublisher_LimiterWaitFails(t *testing.T) {
	logs := &fakeLogs{}
	limiter := rate_limiter.NewAPILimiter(&rate_limiter.Definition{Name: "test", FillRate: 1000, BucketSize: 1, MaxConcurrency: 1})
	// hold the only slot so Wait blocks until the deadline
	require.True(t, limiter.TryToAcquireSemaphore())
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res, err := NewPublisher(logs, WithLimiter(limiter)).Publish(ctx, testDest, records("1", "2"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var publishErr *PublishError
	assert.False(t, errors.As(err, &publishErr), "no call was made, so this is not a publish failure")
	assert.Equal(t, Result{}, res)
	assert.Empty(t, logs.calls)
}
