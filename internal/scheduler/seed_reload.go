package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/allmytab/startpage/internal/domain"
	"github.com/allmytab/startpage/internal/logger"
	"github.com/allmytab/startpage/internal/sources/seed"
)

// AdminInvalidator drops cached admin category state after a reload.
type AdminInvalidator interface {
	InvalidateAdmin()
}

// CatalogStore persists the operator-curated catalog wholesale.
type CatalogStore interface {
	ReplaceAdminCategories(ctx context.Context, categories []*domain.Category) error
	ReplaceAdminBookmarks(ctx context.Context, bookmarks []*domain.Bookmark) error
}

// SeedReloader keeps the admin catalog in sync with seed.yaml: once at
// startup, then periodically, plus on manual trigger.
type SeedReloader struct {
	loader        *seed.Loader
	mapper        *seed.Mapper
	store         CatalogStore
	resolver      AdminInvalidator
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

func NewSeedReloader(
	seedFile string,
	store CatalogStore,
	resolver AdminInvalidator,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SeedReloader {
	return &SeedReloader{
		loader:        seed.NewLoader(seedFile),
		mapper:        seed.NewMapper(),
		store:         store,
		resolver:      resolver,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the seed immediately, then keeps reloading on a ticker and
// on manual triggers until Stop or context cancellation.
func (sr *SeedReloader) Start(ctx context.Context) error {
	if err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial seed reload failed: %w", err)
	}

	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed",
						logger.Error(err))
				}
			case <-sr.manualTrigger:
				sr.logger.Info("manual seed reload triggered")
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed",
						logger.Error(err))
				}
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (sr *SeedReloader) Stop() {
	close(sr.stopCh)
}

// Reload parses the seed file and replaces the stored admin catalog.
// Documents absent from the new seed are removed; stable ids keep
// unchanged entries converging on the same keys.
func (sr *SeedReloader) Reload(ctx context.Context) error {
	sr.logger.Info("reloading admin catalog from seed")

	cfg, err := sr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load seed: %w", err)
	}

	cats, err := sr.mapper.MapCategories(cfg)
	if err != nil {
		return fmt.Errorf("failed to map categories: %w", err)
	}
	bookmarks, err := sr.mapper.MapBookmarks(cfg, cats)
	if err != nil {
		return fmt.Errorf("failed to map links: %w", err)
	}

	if err := sr.store.ReplaceAdminCategories(ctx, cats); err != nil {
		return fmt.Errorf("failed to store categories: %w", err)
	}
	if err := sr.store.ReplaceAdminBookmarks(ctx, bookmarks); err != nil {
		return fmt.Errorf("failed to store links: %w", err)
	}

	sr.resolver.InvalidateAdmin()

	sr.logger.Info("admin catalog reloaded",
		logger.Int("categories", len(cats)),
		logger.Int("links", len(bookmarks)))
	return nil
}
