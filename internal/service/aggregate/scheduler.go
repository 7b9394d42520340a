// internal/service/aggregate/scheduler.go

package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// CycleRunner runs one aggregation cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (CycleSummary, error)
}

// Scheduler drives aggregation cycles on a fixed interval. The first cycle
// runs as soon as Start is called, later ones on every tick.
type Scheduler struct {
	runner   CycleRunner
	clock    clockwork.Clock
	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler that runs cycles every interval.
func NewScheduler(runner CycleRunner, clock clockwork.Clock, interval time.Duration) *Scheduler {
	return &Scheduler{
		runner:   runner,
		clock:    clock,
		interval: interval,
	}
}

// Start launches the cycle loop.
func (s *Scheduler) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(runCtx)

	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	s.cycle(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.cycle(ctx)
		}
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	summary, err := s.runner.RunCycle(ctx)
	if err != nil {
		if errors.Is(err, ErrEmptyTrendingSet) {
			slog.Warn("Skipping aggregation cycle", "reason", err)
			return
		}

		slog.Error("Aggregation cycle finished with failures",
			"topics", summary.Topics,
			"created", summary.Created,
			"updated", summary.Updated,
			"removed", summary.Removed,
			"failed", summary.Failed,
			"error", err,
		)
		return
	}

	slog.Info("Aggregation cycle finished",
		"topics", summary.Topics,
		"created", summary.Created,
		"updated", summary.Updated,
		"removed", summary.Removed,
	)
}

// Stop gracefully stops the cycle loop, waiting for an in-flight cycle to
// finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	c := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(c)
	}()

	select {
	case <-c:
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}
