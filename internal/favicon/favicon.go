// Package favicon resolves icon URLs for bookmarks through an external
// favicon service. Lookups are best-effort: a failing or slow service
// trips a circuit breaker and callers fall back to the default icon.
package favicon

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/allmytab/startpage/internal/domain"
	"github.com/allmytab/startpage/internal/logger"
	"github.com/allmytab/startpage/internal/utils"
)

// DefaultIcon is served when resolution fails or the breaker is open.
const DefaultIcon = ""

type Options struct {
	// Endpoint is a printf template with one %s verb for the hostname.
	Endpoint string
	Timeout  time.Duration
	Debounce time.Duration
}

type Resolver struct {
	opts    Options
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     logger.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func New(opts Options, log logger.Logger) *Resolver {
	settings := gobreaker.Settings{
		Name:    "favicon",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("favicon breaker state change",
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
	}
	return &Resolver{
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
		log:     log,
		timers:  make(map[string]*time.Timer),
	}
}

// Resolve returns the icon URL for a bookmark URL, or DefaultIcon when the
// service is unreachable or the breaker is open. It never returns an error:
// icon failures must not surface to the viewer.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) string {
	host, err := domain.URLHost(rawURL)
	if err != nil || host == "" {
		return DefaultIcon
	}
	iconURL := fmt.Sprintf(r.opts.Endpoint, host)

	_, err = r.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, iconURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := r.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer utils.Close(resp.Body)
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("favicon service status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		r.log.Debug("favicon lookup degraded",
			logger.String("host", host),
			logger.Error(err))
		return DefaultIcon
	}
	return iconURL
}

// ResolveDebounced schedules a resolution for key after the debounce window.
// Re-invoking with the same key resets the window, so of a burst of edits
// only the last one resolves. fn receives the resolved icon URL.
func (r *Resolver) ResolveDebounced(key, rawURL string, fn func(icon string)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.timers[key]; ok {
		t.Stop()
	}
	r.timers[key] = time.AfterFunc(r.opts.Debounce, func() {
		r.mu.Lock()
		delete(r.timers, key)
		r.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), r.opts.Timeout)
		defer cancel()
		fn(r.Resolve(ctx, rawURL))
	})
}
