package game

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/playperu/quizboard/internal/quizboard"
)

// PhaseLister finds the sessions currently sitting in a phase.
type PhaseLister interface {
	CodesInPhase(ctx context.Context, phase quizboard.Phase) ([]string, error)
}

const sweepParallelism = 8

// Sweeper closes expired questions. Several sweepers, in one process or
// many, may run against the same store: the tick is idempotent.
type Sweeper struct {
	engine   *Engine
	lister   PhaseLister
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(engine *Engine, lister PhaseLister, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{engine: engine, lister: lister, interval: interval, logger: logger}
}

// Run sweeps every interval until ctx is cancelled.
func (w *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if _, err := w.Sweep(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("timeout sweep", "error", err)
			}
		}
	}
}

// Sweep ticks every session in the question phase once and returns how many
// questions it closed. A failure on one session does not stop the others.
func (w *Sweeper) Sweep(ctx context.Context) (int, error) {
	codes, err := w.lister.CodesInPhase(ctx, quizboard.PhaseQuestion)
	if err != nil {
		return 0, err
	}

	var closed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepParallelism)
	for _, code := range codes {
		g.Go(func() error {
			_, handled, err := w.engine.QuestionTimeoutTick(gctx, code)
			if err != nil {
				w.logger.Warn("timeout tick", "code", code, "error", err)
				return nil
			}
			if handled {
				closed.Add(1)
			}
			return nil
		})
	}
	err = g.Wait()
	return int(closed.Load()), err
}
