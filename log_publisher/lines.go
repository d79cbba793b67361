package log_publisher

import (
	"strings"
	"time"

	"github.com/turbot/tailpipe-s3-log-forwarder/types"
)

// SplitLines splits text on '\n', removing a trailing '\r' from each line
// Empty lines are dropped; the order of the remaining lines is kept
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// BuildRecords creates a record per line, all with the timestamp ts
func BuildRecords(lines []string, ts time.Time) []types.LogRecord {
	records := make([]types.LogRecord, len(lines))
	for i, line := range lines {
		records[i] = types.NewLogRecord(line, ts)
	}
	return records
}
