package scheduler

import (
	"context"
	"time"

	"github.com/allmytab/startpage/internal/logger"
)

const (
	// DefaultJanitorMaxAge is how long an untouched cache entry survives
	DefaultJanitorMaxAge = 30 * time.Minute
)

// Pruner drops cache entries older than the given age and reports how
// many it removed.
type Pruner interface {
	Prune(age time.Duration) int
}

// CacheJanitor periodically evicts stale entries from the in-memory
// caches so idle viewers do not pin memory forever.
type CacheJanitor struct {
	pruners  []Pruner
	logger   logger.Logger
	interval time.Duration
	maxAge   time.Duration
	stopCh   chan struct{}
}

func NewCacheJanitor(
	log logger.Logger,
	interval time.Duration,
	maxAge time.Duration,
	pruners ...Pruner,
) *CacheJanitor {
	if maxAge == 0 {
		maxAge = DefaultJanitorMaxAge
	}

	return &CacheJanitor{
		pruners:  pruners,
		logger:   log,
		interval: interval,
		maxAge:   maxAge,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep.
func (cj *CacheJanitor) Start(ctx context.Context) {
	ticker := time.NewTicker(cj.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cj.Sweep()
			case <-cj.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the janitor.
func (cj *CacheJanitor) Stop() {
	close(cj.stopCh)
}

// Sweep prunes every registered cache once.
func (cj *CacheJanitor) Sweep() {
	total := 0
	for _, p := range cj.pruners {
		total += p.Prune(cj.maxAge)
	}
	if total > 0 {
		cj.logger.Info("cache sweep complete",
			logger.Int("evicted", total))
	}
}
