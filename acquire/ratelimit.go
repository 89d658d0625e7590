package acquire

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// originLimiters enforces a per-origin polite delay between requests,
// caching one rate.Limiter per scheme+host (spec §4.1 "Rate limiting"; §5
// "robots.txt cache + CIK cache per-process read-mostly safe for concurrent
// readers" extends naturally to a per-origin limiter cache).
type originLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval time.Duration
}

func newOriginLimiters(interval time.Duration) *originLimiters {
	return &originLimiters{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
	}
}

func (o *originLimiters) forURL(raw string) *rate.Limiter {
	origin := raw
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		origin = u.Scheme + "://" + u.Host
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.limiters[origin]
	if !ok {
		// One token per interval; burst of 1 enforces "at least interval
		// between requests" rather than allowing a burst.
		every := o.interval
		if every <= 0 {
			every = time.Millisecond
		}
		l = rate.NewLimiter(rate.Every(every), 1)
		o.limiters[origin] = l
	}
	return l
}

// Wait blocks until the origin of rawURL is permitted to make another
// request, honoring ctx cancellation (spec §5 "Acquirer per-request
// timeouts... cancellation aborts stage").
func (o *originLimiters) Wait(ctx context.Context, rawURL string) error {
	return o.forURL(rawURL).Wait(ctx)
}
