// internal/service/acquisition/retry.go

package acquisition

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// ResultKind tags the shape of an operation's result so that exhaustion
// produces the right kind of empty value in logs and callers.
type ResultKind string

const (
	KindSeries  ResultKind = "series"
	KindMapping ResultKind = "mapping"
	KindList    ResultKind = "list"
)

// Operation describes one retryable acquisition call. Fetch performs a
// single protocol request; IsEmpty decides whether a successful result is
// worth keeping; Empty builds the canonical empty result for the kind.
type Operation[T any] struct {
	Name    string
	Kind    ResultKind
	Fetch   func(ctx context.Context) (T, error)
	IsEmpty func(T) bool
	Empty   func() T
}

// Executor retries acquisition calls on a pure exponential schedule and
// absorbs exhaustion into canonical empty results. It never returns an
// error to callers; a request that cannot be satisfied inside the attempt
// budget degrades to the operation's empty value.
type Executor struct {
	maxRetries int
	baseDelay  time.Duration
	log        *logrus.Logger
}

// NewExecutor creates an executor with the given attempt budget and base
// backoff delay. The budget counts total attempts, not re-attempts.
func NewExecutor(maxRetries int, baseDelay time.Duration, log *logrus.Logger) *Executor {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Executor{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		log:        log,
	}
}

func (e *Executor) newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * e.baseDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	// Only the attempt budget bounds the schedule.
	bo.MaxInterval = 24 * time.Hour
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

// Do runs op.Fetch up to the executor's attempt budget. Attempt i (counted
// from zero) is preceded by a blocking sleep of baseDelay·2^i, so the first
// attempt fires immediately. Rate-limit failures, other failures and empty
// results are all retried; the distinction only changes the log line. When
// the budget is exhausted, or ctx is canceled during a backoff sleep, Do
// returns op.Empty().
func Do[T any](ctx context.Context, e *Executor, op Operation[T]) T {
	bo := e.newBackOff()

	for attempt := 0; attempt < e.maxRetries; attempt++ {
		if attempt > 0 {
			delay := bo.NextBackOff()
			e.log.Infof("retry attempt %d/%d for %s after %.1fs delay", attempt+1, e.maxRetries, op.Name, delay.Seconds())
			if !sleep(ctx, delay) {
				e.log.Warnf("%s canceled during backoff, returning empty %s", op.Name, op.Kind)
				return op.Empty()
			}
		}

		result, err := op.Fetch(ctx)
		if err != nil {
			if classify(err) == failureRateLimited {
				e.log.Warnf("rate limit hit on %s (attempt %d/%d): %v", op.Name, attempt+1, e.maxRetries, err)
			} else {
				e.log.Warnf("%s failed (attempt %d/%d): %v", op.Name, attempt+1, e.maxRetries, err)
			}
			continue
		}

		if op.IsEmpty(result) {
			e.log.Warnf("%s returned no data (attempt %d/%d)", op.Name, attempt+1, e.maxRetries)
			continue
		}

		return result
	}

	e.log.Errorf("%s exhausted %d attempts, returning empty %s", op.Name, e.maxRetries, op.Kind)
	return op.Empty()
}

type failureClass int

const (
	failureTransient failureClass = iota
	failureRateLimited
)

// classify inspects an error's text for the source's rate-limit markers.
// The trends endpoints expose no structured error codes, so substring
// matching on "429" and "too many requests" is the detection contract.
func classify(err error) failureClass {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "too many requests") {
		return failureRateLimited
	}
	return failureTransient
}

// sleep blocks for d or until ctx is done, reporting whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
