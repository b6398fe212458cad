package services

import (
	"context"
	"time"

	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

// Watcher turns polling of the log store into a stream of snapshots
type Watcher struct {
	entries  domain.LogEntryStore
	interval time.Duration
}

func NewWatcher(entries domain.LogEntryStore, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{entries: entries, interval: interval}
}

// Watch emits the user's full entry list (newest first) right away and again
// whenever it changes. The channel is closed when ctx is done.
func (w *Watcher) Watch(ctx context.Context, userID string) <-chan []domain.LogEntry {
	out := make(chan []domain.LogEntry)

	go func() {
		defer close(out)
		log := logger.WithFields("user_id", userID)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		var (
			last domain.Revision
			sent bool
		)
		for {
			rev, err := w.entries.Revision(ctx, userID)
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return
				}
				log.Warn("Failed to poll log revision", "error", err)
			case !sent || rev.Count != last.Count || !rev.LastCreatedAt.Equal(last.LastCreatedAt):
				entries, err := w.entries.List(ctx, userID)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Warn("Failed to load log snapshot", "error", err)
					break
				}
				select {
				case out <- entries:
					last, sent = rev, true
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return out
}
