package rate_limiter

import (
	"context"
	"strings"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// APILimiter paces calls to an API and bounds how many are in flight
// Every successful Wait must be paired with a Release
type APILimiter struct {
	Name string

	// underlying rate limiter
	limiter *rate.Limiter
	// semaphore to control concurrency
	sem        *semaphore.Weighted
	definition *Definition
}

func NewAPILimiter(l *Definition) *APILimiter {
	res := &APILimiter{
		Name:       l.Name,
		definition: l,
	}
	if l.FillRate != 0 {
		res.limiter = rate.NewLimiter(l.FillRate, int(l.BucketSize))
	}
	if l.MaxConcurrency != 0 {
		res.sem = semaphore.NewWeighted(l.MaxConcurrency)
	}
	return res
}

func (l *APILimiter) String() string {
	return strings.TrimSpace(l.Name + " " + l.definition.String())
}

func (l *APILimiter) TryToAcquireSemaphore() bool {
	if l.sem == nil {
		return true
	}
	return l.sem.TryAcquire(1)
}

// Wait blocks until a call may be made, or the context is done
func (l *APILimiter) Wait(ctx context.Context) error {
	if l.sem != nil {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			l.Release()
			return err
		}
	}
	return nil
}

func (l *APILimiter) Release() {
	if l.sem == nil {
		return
	}
	l.sem.Release(1)
}
