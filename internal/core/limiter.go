package core

// limiter.go bounds how many pipeline runs execute at once.
//
// Two full reloads of the same silver tables racing each other would only
// waste work, so the default is a single slot. A caller that cannot get a
// slot within maxWait receives ErrRunInProgress.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrRunInProgress is returned when every run slot is taken and the wait
// expires.
var ErrRunInProgress = errors.New("run in progress, try again later")

// DefaultMaxConcurrentRuns is the default number of run slots.
const DefaultMaxConcurrentRuns = 1

// RunLimiter is a counting semaphore for pipeline runs.
type RunLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int32
}

// NewRunLimiter creates a limiter with maxConcurrent slots. Callers wait up
// to maxWait for a slot; a non-positive maxWait fails immediately when full.
func NewRunLimiter(maxConcurrent int, maxWait time.Duration) *RunLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentRuns
	}
	return &RunLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot. The caller MUST call Release when the run ends.
func (l *RunLimiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	default:
	}

	if l.maxWait <= 0 {
		return ErrRunInProgress
	}

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-timer.C:
		return ErrRunInProgress
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (l *RunLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Active returns the number of runs holding a slot.
func (l *RunLimiter) Active() int {
	return int(l.active.Load())
}

// Available returns the number of free slots.
func (l *RunLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until no run holds a slot or ctx is done.
func (l *RunLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// RunLimiterStatus is a snapshot of the limiter.
type RunLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

// Status returns the current limiter state.
func (l *RunLimiter) Status() RunLimiterStatus {
	return RunLimiterStatus{
		Active:        l.Active(),
		Available:     l.Available(),
		MaxConcurrent: cap(l.slots),
	}
}
