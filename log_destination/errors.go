package log_destination

import (
	"errors"
	"fmt"

	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/smithy-go"
	"github.com/turbot/tailpipe-s3-log-forwarder/types"
)

// Kind classifies a CreateLogStream failure
type Kind int

const (
	KindOther Kind = iota
	KindAlreadyExists
	KindGroupNotFound
	KindAccessDenied
	KindThrottled
)

func (k Kind) String() string {
	switch k {
	case KindAlreadyExists:
		return "already_exists"
	case KindGroupNotFound:
		return "group_not_found"
	case KindAccessDenied:
		return "access_denied"
	case KindThrottled:
		return "throttled"
	default:
		return "other"
	}
}

// DestinationError is returned when the log stream could not be ensured
type DestinationError struct {
	Dest types.LogDestination
	Kind Kind
	Err  error
}

func (e *DestinationError) Error() string {
	return fmt.Sprintf("failed to create log stream %s (%s), %s", e.Dest, e.Kind, e.Err)
}

func (e *DestinationError) Unwrap() error {
	return e.Err
}

// Classify maps an error returned by CloudWatch Logs to a Kind, using the error type
// and API error code rather than the error text
func Classify(err error) Kind {
	if err == nil {
		return KindOther
	}

	var alreadyExists *cwtypes.ResourceAlreadyExistsException
	if errors.As(err, &alreadyExists) {
		return KindAlreadyExists
	}
	var notFound *cwtypes.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return KindGroupNotFound
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return KindOther
	}
	switch apiErr.ErrorCode() {
	case "ResourceAlreadyExistsException":
		return KindAlreadyExists
	case "ResourceNotFoundException":
		return KindGroupNotFound
	case "AccessDeniedException", "AccessDenied", "UnrecognizedClientException":
		return KindAccessDenied
	case "ThrottlingException", "Throttling", "LimitExceededException":
		return KindThrottled
	default:
		return KindOther
	}
}
