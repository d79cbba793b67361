// Package notification decodes the S3 event notification which triggers the forwarder
package notification

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/turbot/tailpipe-s3-log-forwarder/types"
)

// ErrInvalidNotification is returned when the event does not identify an object
var ErrInvalidNotification = errors.New("invalid notification")

// Decode returns the object referenced by the first record of the event
// Any further records are ignored
func Decode(event events.S3Event) (types.ObjectRef, error) {
	if len(event.Records) == 0 {
		return types.ObjectRef{}, fmt.Errorf("%w: no records", ErrInvalidNotification)
	}
	if len(event.Records) > 1 {
		slog.Debug("notification contains multiple records, only the first is processed", "records", len(event.Records))
	}

	record := event.Records[0]
	bucket := record.S3.Bucket.Name
	if bucket == "" {
		return types.ObjectRef{}, fmt.Errorf("%w: missing bucket name", ErrInvalidNotification)
	}

	key, err := decodeKey(record.S3.Object)
	if err != nil {
		return types.ObjectRef{}, err
	}

	return types.NewObjectRef(bucket, key), nil
}

// object keys are form encoded in notifications ('+' for space, %XX escapes)
func decodeKey(object events.S3Object) (string, error) {
	if object.URLDecodedKey != "" {
		return object.URLDecodedKey, nil
	}
	if object.Key == "" {
		return "", fmt.Errorf("%w: missing object key", ErrInvalidNotification)
	}
	key, err := url.QueryUnescape(object.Key)
	if err != nil {
		return "", fmt.Errorf("%w: failed to decode object key %q, %w", ErrInvalidNotification, object.Key, err)
	}
	return key, nil
}
