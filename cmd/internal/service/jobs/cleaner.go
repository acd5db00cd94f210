package jobs

import (
	"context"
	"gestaoacoes/cmd/internal/utils"
	"time"

	"github.com/labstack/gommon/log"
)

// ConnectionCleanup closes realtime sessions whose token already expired.
type ConnectionCleanup interface {
	CleanupExpired(ctx context.Context, now int64) int
}

type ConnectionCleaner struct {
	sockets  ConnectionCleanup
	interval time.Duration
}

func NewConnectionCleaner(sockets ConnectionCleanup) *ConnectionCleaner {
	// Poll every 5 minutes
	return &ConnectionCleaner{sockets: sockets, interval: 5 * time.Minute}
}

func (c *ConnectionCleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	log.Info("Connection cleaner started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping connection cleaner...")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *ConnectionCleaner) cleanup(ctx context.Context) {
	// Network calls must not be cut short by a shutdown in progress
	if n := c.sockets.CleanupExpired(context.WithoutCancel(ctx), utils.NowUTC()); n > 0 {
		log.Infof("Cleaner: terminated %d expired connections", n)
	}
}
