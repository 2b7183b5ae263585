package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crucial707/groupchat/internal/metrics"
	"github.com/robfig/cron/v3"
)

// refreshTimeout bounds one refresh so a stuck database cannot pile up jobs.
const refreshTimeout = 10 * time.Second

// Counter reports a row count. *repo.UserRepo and *repo.MessageRepo satisfy it.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Run refreshes the stored users/messages gauges once, then on every tick of
// the cron spec until ctx is cancelled. An invalid spec is returned immediately.
func Run(ctx context.Context, spec string, users, messages Counter) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	refresh := func() {
		if err := RefreshStoreSizes(ctx, users, messages); err != nil {
			slog.Warn("scheduler: refresh store sizes", "error", err)
		}
	}
	if _, err := c.AddFunc(spec, refresh); err != nil {
		return fmt.Errorf("scheduler: invalid schedule %q: %w", spec, err)
	}
	slog.Info("scheduler: store size refresh scheduled", "schedule", spec)

	// Initial load
	refresh()
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// RefreshStoreSizes counts users and messages and publishes them as gauges.
func RefreshStoreSizes(ctx context.Context, users, messages Counter) error {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	nUsers, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	nMessages, err := messages.Count(ctx)
	if err != nil {
		return fmt.Errorf("count messages: %w", err)
	}
	metrics.SetStoreSizes(nUsers, nMessages)
	return nil
}
