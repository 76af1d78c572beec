package llm

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// WaitInfo contains information about a rate limit wait
type WaitInfo struct {
	Duration time.Duration // How long to wait
	Reason   string
}

// WaitCallback is called before the client sleeps for the rate limiter.
// It should block for the specified duration or until ctx is cancelled.
// If nil, a plain timer is used.
type WaitCallback func(ctx context.Context, info WaitInfo) error

// RateLimitedCompleter throttles calls to the wrapped Completer to a number
// of requests per minute. It never retries.
type RateLimitedCompleter struct {
	next    Completer
	limiter *rate.Limiter

	mu     sync.Mutex
	onWait WaitCallback
}

// NewRateLimitedCompleter wraps next with a limit of requestsPerMinute
func NewRateLimitedCompleter(next Completer, requestsPerMinute int) *RateLimitedCompleter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	perSecond := float64(requestsPerMinute) / 60.0
	return &RateLimitedCompleter{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// SetWaitCallback sets a callback to be invoked when a call has to wait
func (c *RateLimitedCompleter) SetWaitCallback(cb WaitCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onWait = cb
}

// Complete waits for a slot, then delegates. A cancelled wait is a transport failure.
func (c *RateLimitedCompleter) Complete(ctx context.Context, prompt, model string) Result {
	if err := c.wait(ctx); err != nil {
		return Fail(&Failure{Kind: KindTransport, Detail: err.Error()})
	}
	return c.next.Complete(ctx, prompt, model)
}

func (c *RateLimitedCompleter) wait(ctx context.Context) error {
	c.mu.Lock()
	onWait := c.onWait
	c.mu.Unlock()

	reservation := c.limiter.Reserve()
	delay := reservation.Delay()
	if delay <= 0 {
		return nil
	}
	log.Debug("rate limit: waiting %v", delay)

	if onWait != nil {
		if err := onWait(ctx, WaitInfo{Duration: delay, Reason: "request rate limit"}); err != nil {
			reservation.Cancel()
			return err
		}
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		reservation.Cancel()
		return ctx.Err()
	}
}

// SleepWait is a WaitCallback that notifies and then sleeps for the full delay
func SleepWait(notify func(WaitInfo)) WaitCallback {
	return func(ctx context.Context, info WaitInfo) error {
		if notify != nil {
			notify(info)
		}
		timer := time.NewTimer(info.Duration)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
