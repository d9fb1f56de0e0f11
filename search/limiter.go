package search

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limiter bounds how many searches run at once and how often new ones start.
// A nil *Limiter admits everything.
type Limiter struct {
	inFlight *semaphore.Weighted // nil if unlimited
	starts   *rate.Limiter       // nil if unlimited
}

// NewLimiter returns a limiter allowing maxInFlight concurrent searches and
// perSecond new searches per second. Zero or negative disables either bound.
func NewLimiter(maxInFlight int64, perSecond float64) *Limiter {
	l := &Limiter{}
	if maxInFlight > 0 {
		l.inFlight = semaphore.NewWeighted(maxInFlight)
	}
	if perSecond > 0 {
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		l.starts = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return l
}

// Acquire blocks until a search may start or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if l.starts != nil {
		if err := l.starts.Wait(ctx); err != nil {
			return err
		}
	}
	if l.inFlight != nil {
		return l.inFlight.Acquire(ctx, 1)
	}
	return nil
}

// Release frees the slot taken by Acquire.
func (l *Limiter) Release() {
	if l == nil || l.inFlight == nil {
		return
	}
	l.inFlight.Release(1)
}
