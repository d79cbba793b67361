package log_publisher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/turbot/tailpipe-s3-log-forwarder/constants"
	"github.com/turbot/tailpipe-s3-log-forwarder/types"
)

func recordsOfSize(sizes ...int) []types.LogRecord {
	records := make([]types.LogRecord, len(sizes))
	for i, s := range sizes {
		records[i] = types.LogRecord{Message: strings.Repeat("x", s), Timestamp: 1}
	}
	return records
}

func batchLens(batches [][]types.LogRecord) []int {
	lens := make([]int, len(batches))
	for i, b := range batches {
		lens[i] = len(b)
	}
	return lens
}

func TestBatches(t *testing.T) {
	tests := []struct {
		name    string
		records []types.LogRecord
		policy  BatchPolicy
		want    []int
	}{
		{
			name:    "default is one record per batch",
			records: recordsOfSize(10, 10, 10),
			policy:  DefaultBatchPolicy(),
			want:    []int{1, 1, 1},
		},
		{
			name:    "count limit",
			records: recordsOfSize(1, 1, 1, 1, 1),
			policy:  BatchPolicy{MaxEvents: 2, MaxBytes: 1000},
			want:    []int{2, 2, 1},
		},
		{
			name: "byte limit includes per event overhead",
			// each record is 74 + 26 = 100 bytes
			records: recordsOfSize(74, 74, 74),
			policy:  BatchPolicy{MaxEvents: 100, MaxBytes: 200},
			want:    []int{2, 1},
		},
		{
			name:    "oversized record gets its own batch",
			records: recordsOfSize(10, 500, 10),
			policy:  BatchPolicy{MaxEvents: 100, MaxBytes: 100},
			want:    []int{1, 1, 1},
		},
		{
			name:    "no records",
			records: nil,
			policy:  DefaultBatchPolicy(),
			want:    []int{},
		},
		{
			name:    "invalid policy falls back to service limits",
			records: recordsOfSize(1, 1, 1),
			policy:  BatchPolicy{MaxEvents: 0, MaxBytes: -1},
			want:    []int{1, 1, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, batchLens(Batches(tt.records, tt.policy)))
		})
	}
}

func TestBatches_KeepsOrder(t *testing.T) {
	records := []types.LogRecord{{Message: "a"}, {Message: "b"}, {Message: "c"}, {Message: "d"}}
	var got []string
	for _, b := range Batches(records, BatchPolicy{MaxEvents: 3}) {
		for _, r := range b {
			got = append(got, r.Message)
		}
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestBatchPolicy_Normalize(t *testing.T) {
	p := BatchPolicy{MaxEvents: 20000, MaxBytes: 5 * 1024 * 1024}.normalize()
	assert.Equal(t, constants.MaxEventsPerCall, p.MaxEvents)
	assert.Equal(t, constants.MaxBytesPerCall, p.MaxBytes)
}
