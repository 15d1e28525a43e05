package bot

import (
	"context"
	"time"

	applog "pharmabot/internal/log"
	"pharmabot/internal/telegram"
)

// UpdateSource is the long-poll side of the Telegram client.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]telegram.Update, error)
}

const (
	pollTimeoutSec = 50
	pollRetryDelay = 3 * time.Second
)

// Poll drives the router from getUpdates until ctx is cancelled.
// Transient poll errors are logged and retried after a short delay.
func Poll(ctx context.Context, src UpdateSource, r *Router) {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := src.GetUpdates(ctx, offset, pollTimeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			applog.Error("bot.poll", err, nil)
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			r.HandleUpdate(ctx, u)
		}
	}
}
