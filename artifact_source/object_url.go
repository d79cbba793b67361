package artifact_source

import (
	"fmt"
	"strings"

	"github.com/turbot/tailpipe-s3-log-forwarder/types"
)

const (
	SchemeS3  = "s3"
	SchemeGCS = "gs"
)

// ParseObjectURL parses s3://bucket/key or gs://bucket/key
// Everything after the first '/' following the bucket is the key, taken literally:
// object keys may contain '?', '#' and '%', so the key is neither split nor unescaped
func ParseObjectURL(raw string) (string, types.ObjectRef, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return "", types.ObjectRef{}, fmt.Errorf("invalid object url %q: expected <scheme>://<bucket>/<key>", raw)
	}

	scheme = strings.ToLower(scheme)
	if scheme != SchemeS3 && scheme != SchemeGCS {
		return "", types.ObjectRef{}, fmt.Errorf("invalid object url %q: scheme must be %s or %s", raw, SchemeS3, SchemeGCS)
	}

	bucket, key, _ := strings.Cut(rest, "/")
	ref := types.NewObjectRef(bucket, key)
	if err := ref.Validate(); err != nil {
		return "", types.ObjectRef{}, fmt.Errorf("invalid object url %q: %w", raw, err)
	}
	return scheme, ref, nil
}
