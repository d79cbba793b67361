package log_publisher

import (
	"github.com/turbot/tailpipe-s3-log-forwarder/constants"
	"github.com/turbot/tailpipe-s3-log-forwarder/types"
)

// BatchPolicy bounds the records sent in a single PutLogEvents call
type BatchPolicy struct {
	MaxEvents int
	MaxBytes  int
}

// DefaultBatchPolicy sends one record per call
func DefaultBatchPolicy() BatchPolicy {
	return BatchPolicy{
		MaxEvents: 1,
		MaxBytes:  constants.MaxBytesPerCall,
	}
}

// clamp the policy to the limits of the service
func (p BatchPolicy) normalize() BatchPolicy {
	if p.MaxEvents < 1 {
		p.MaxEvents = 1
	}
	if p.MaxEvents > constants.MaxEventsPerCall {
		p.MaxEvents = constants.MaxEventsPerCall
	}
	if p.MaxBytes < 1 || p.MaxBytes > constants.MaxBytesPerCall {
		p.MaxBytes = constants.MaxBytesPerCall
	}
	return p
}

// Batches splits records into consecutive batches that satisfy the policy, keeping record order
// A record larger than MaxBytes is put in a batch of its own
func Batches(records []types.LogRecord, policy BatchPolicy) [][]types.LogRecord {
	policy = policy.normalize()

	var batches [][]types.LogRecord
	start, size := 0, 0
	for i, r := range records {
		count := i - start
		if count > 0 && (count >= policy.MaxEvents || size+r.Size() > policy.MaxBytes) {
			batches = append(batches, records[start:i])
			start, size = i, 0
		}
		size += r.Size()
	}
	if start < len(records) {
		batches = append(batches, records[start:])
	}
	return batches
}
