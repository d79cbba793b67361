package artifact_source

import (
	"context"

	"github.com/turbot/tailpipe-s3-log-forwarder/types"
)

// ObjectSource reads a complete object from a storage bucket
// Sources provided: [AwsS3BucketSource], [GcpStorageBucketSource]
type ObjectSource interface {
	Identifier() string
	Fetch(context.Context, types.ObjectRef) ([]byte, error)
}
