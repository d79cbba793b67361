package types

import (
	"errors"
	"fmt"
)

// ObjectRef identifies a single object in a storage bucket
type ObjectRef struct {
	Bucket string
	Key    string
}

func NewObjectRef(bucket, key string) ObjectRef {
	return ObjectRef{
		Bucket: bucket,
		Key:    key,
	}
}

func (r ObjectRef) Validate() error {
	if r.Bucket == "" {
		return errors.New("bucket is required")
	}
	if r.Key == "" {
		return errors.New("key is required")
	}
	return nil
}

// String returns the object as bucket/key; the ref does not know which store it lives in
func (r ObjectRef) String() string {
	return fmt.Sprintf("%s/%s", r.Bucket, r.Key)
}
