package scheduler

import (
    "context"
    "errors"
    "log"
    "time"

    "github.com/padelhub/turn-booking/internal/engine"
)

// DueLister exposes the locked turns whose window has passed.
type DueLister interface {
    ListDueForCompletion(ctx context.Context, now time.Time, limit int) ([]uint64, error)
}

// Sweeper periodically completes locked turns once their scheduled
// end has passed. Completion is idempotent at the engine level, so a
// turn cancelled or completed between listing and locking is simply
// skipped.
type Sweeper struct {
    engine   *engine.Engine
    due      DueLister
    interval time.Duration
    batch    int
}

// NewSweeper constructs a Sweeper. interval defaults to one minute
// when zero.
func NewSweeper(eng *engine.Engine, due DueLister, interval time.Duration) *Sweeper {
    if interval <= 0 {
        interval = time.Minute
    }
    return &Sweeper{engine: eng, due: due, interval: interval, batch: 100}
}

// Run sweeps on a ticker until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            if err := s.SweepOnce(ctx); err != nil {
                log.Printf("sweeper: sweep failed: %v", err)
            }
        }
    }
}

// SweepOnce completes every due turn it can and returns the first
// listing error. Per-turn conflicts are logged and skipped.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
    ids, err := s.due.ListDueForCompletion(ctx, time.Now(), s.batch)
    if err != nil {
        return err
    }
    for _, id := range ids {
        _, err := s.engine.CompleteTurn(ctx, id)
        switch {
        case err == nil:
        case errors.Is(err, engine.ErrTurnNotCompletable),
            errors.Is(err, engine.ErrTurnNotDue),
            errors.Is(err, engine.ErrTurnNotFound):
            // Raced with a cancel or another sweeper.
        case errors.Is(err, engine.ErrContention):
            log.Printf("sweeper: turn %d contended, will retry next tick", id)
        default:
            log.Printf("sweeper: complete turn %d: %v", id, err)
        }
    }
    return nil
}
