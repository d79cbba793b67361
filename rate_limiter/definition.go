package rate_limiter

import (
	"fmt"
	"strings"

	"golang.org/x/time/rate"
)

type Definition struct {
	// the limiter name
	Name string
	// calls per second, and the burst allowed above that rate
	FillRate   rate.Limit
	BucketSize int64
	// the max concurrency supported
	MaxConcurrency int64
}

// NewPublishDefinition returns the definition used to pace PutLogEvents calls
// A callsPerSecond of 0 returns nil (unlimited)
func NewPublishDefinition(callsPerSecond float64) *Definition {
	if callsPerSecond <= 0 {
		return nil
	}
	return &Definition{
		Name:           "put_log_events",
		FillRate:       rate.Limit(callsPerSecond),
		BucketSize:     1,
		MaxConcurrency: 1,
	}
}

func (d *Definition) String() string {
	var parts []string
	if d.FillRate > 0 {
		parts = append(parts, fmt.Sprintf("Limit(/s): %v, Burst: %d", d.FillRate, d.BucketSize))
	}
	if d.MaxConcurrency > 0 {
		parts = append(parts, fmt.Sprintf("MaxConcurrency: %d", d.MaxConcurrency))
	}
	return strings.Join(parts, " ")
}

func (d *Definition) Validate() []string {
	var validationErrors []string
	if d.Name == "" {
		validationErrors = append(validationErrors, "rate limiter definition must specify a name")
	}
	if (d.FillRate == 0 || d.BucketSize == 0) && d.MaxConcurrency == 0 {
		validationErrors = append(validationErrors, "rate limiter definition must define either a rate limit or max concurrency")
	}

	return validationErrors
}
