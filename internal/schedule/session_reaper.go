package schedule

import (
	"context"
	"log/slog"
	"time"
)

type Reaper interface {
	Reap(olderThan time.Duration) int
}

// StartSessionReaper drops finished sessions older than olderThan every
// interval until ctx is done.
func StartSessionReaper(ctx context.Context, interval, olderThan time.Duration, r Reaper, log *slog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			log.ErrorContext(ctx, "panic", "error", rec)
		}
	}()

	log.InfoContext(ctx, "session reaper schedule started", "interval", interval, "older_than", olderThan)
	defer log.InfoContext(ctx, "session reaper schedule stopped")
	runIn := time.After(interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-runIn:
			runIn = time.After(interval)

			if reaped := r.Reap(olderThan); reaped > 0 {
				log.DebugContext(ctx, "finished sessions reaped", "reaped", reaped)
			}
		}
	}
}
