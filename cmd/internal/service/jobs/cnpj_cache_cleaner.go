package jobs

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

const CleanInterval = 1 * time.Hour

type CNPJCachePurger interface {
	PurgeExpired(now time.Time) error
}

type CNPJCacheCleaner struct {
	purger CNPJCachePurger
}

func NewCNPJCacheCleaner(purger CNPJCachePurger) *CNPJCacheCleaner {
	return &CNPJCacheCleaner{purger: purger}
}

func (c *CNPJCacheCleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(CleanInterval)
	defer ticker.Stop()

	log.Info("CNPJ cache cleaner started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping CNPJ cache cleaner...")
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *CNPJCacheCleaner) cleanup() {
	if err := c.purger.PurgeExpired(time.Now()); err != nil {
		log.Errorf("Cleaner: failed to delete expired cnpj cache: %v", err)
		return
	}
	log.Debug("Cleaner: swept expired cnpj cache entries")
}
