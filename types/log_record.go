package types

import "time"

// LogRecord is a single event submitted to the log service
// Timestamp is in milliseconds since the epoch
type LogRecord struct {
	Message   string
	Timestamp int64
}

func NewLogRecord(message string, ts time.Time) LogRecord {
	return LogRecord{
		Message:   message,
		Timestamp: ts.UnixMilli(),
	}
}

// Size returns the size of the record as counted by CloudWatch Logs
// (UTF-8 message bytes plus 26 bytes of per-event overhead)
func (r LogRecord) Size() int {
	return len(r.Message) + LogRecordOverheadBytes
}

const LogRecordOverheadBytes = 26
