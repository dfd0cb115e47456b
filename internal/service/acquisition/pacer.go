// internal/service/acquisition/pacer.go

package acquisition

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Pacer enforces a minimum delay between consecutive outbound requests to
// the trends source. All acquisition paths in the process share one Pacer,
// so concurrent callers are serialized by the limiter's internal lock. A
// zero or negative delay disables pacing.
type Pacer struct {
	limiter *rate.Limiter
	log     *logrus.Logger
}

// NewPacer creates a pacer with the given minimum delay between requests.
func NewPacer(requestDelay time.Duration, log *logrus.Logger) *Pacer {
	p := &Pacer{log: log}
	if requestDelay > 0 {
		p.limiter = rate.NewLimiter(rate.Every(requestDelay), 1)
	}
	return p
}

// Wait blocks until the minimum delay since the previous request has
// elapsed. The first call never blocks. Wait cannot fail: if ctx is
// canceled mid-sleep it returns early and the caller's next network call
// surfaces the cancellation instead.
func (p *Pacer) Wait(ctx context.Context) {
	if p.limiter == nil {
		return
	}

	delay := p.limiter.Reserve().Delay()
	if delay <= 0 {
		return
	}

	p.log.Infof("waiting %.1fs before next trends request", delay.Seconds())

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
