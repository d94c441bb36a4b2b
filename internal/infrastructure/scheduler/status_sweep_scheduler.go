package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rentdesk/backend/internal/application/billing"
	"go.uber.org/zap"
)

// StatusSweeper recomputes date-derived installment statuses
type StatusSweeper interface {
	RecomputeAll(ctx context.Context) (*billing.RecomputeResult, error)
}

// StatusSweepScheduler runs the daily installment status recompute sweep.
// The sweep runs against the UTC calendar day so the cutover moment is the
// same for every office regardless of server timezone.
type StatusSweepScheduler struct {
	sweeper   StatusSweeper
	logger    *zap.Logger
	config    StatusSweepSchedulerConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// StatusSweepSchedulerConfig holds configuration for the status sweep scheduler
type StatusSweepSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// SweepHourUTC is the UTC hour (0-23) when the daily sweep runs
	SweepHourUTC int

	// SweepTimeout is the maximum time for one sweep run
	SweepTimeout time.Duration
}

// DefaultStatusSweepSchedulerConfig returns default configuration
func DefaultStatusSweepSchedulerConfig() StatusSweepSchedulerConfig {
	return StatusSweepSchedulerConfig{
		Enabled:      true,
		SweepHourUTC: 3,
		SweepTimeout: 30 * time.Minute,
	}
}

// NewStatusSweepScheduler creates a new status sweep scheduler
func NewStatusSweepScheduler(
	sweeper StatusSweeper,
	logger *zap.Logger,
	config StatusSweepSchedulerConfig,
) *StatusSweepScheduler {
	return &StatusSweepScheduler{
		sweeper: sweeper,
		logger:  logger,
		config:  config,
	}
}

// Start starts the status sweep scheduler
func (s *StatusSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Status sweep scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runDailySweep(ctx)

	s.logger.Info("Status sweep scheduler started",
		zap.Int("sweep_hour_utc", s.config.SweepHourUTC),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *StatusSweepScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Status sweep scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Status sweep scheduler stop timed out")
		return ctx.Err()
	}
}

// runDailySweep runs the sweep once per day at the configured UTC hour
func (s *StatusSweepScheduler) runDailySweep(ctx context.Context) {
	defer s.wg.Done()

	for {
		now := time.Now().UTC()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), s.config.SweepHourUTC, 0, 0, 0, time.UTC)
		if now.After(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}
		delay := time.Until(nextRun)

		s.logger.Info("Daily status sweep scheduled",
			zap.Time("next_run", nextRun),
			zap.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			s.logger.Debug("Daily status sweep loop stopping")
			return
		case <-time.After(delay):
			s.executeSweep(ctx)
		}
	}
}

// executeSweep executes one recompute run
func (s *StatusSweepScheduler) executeSweep(ctx context.Context) {
	s.logger.Info("Starting daily installment status sweep",
		zap.Time("started_at", time.Now()),
	)

	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	startTime := time.Now()
	result, err := s.sweeper.RecomputeAll(sweepCtx)
	duration := time.Since(startTime)

	if err != nil {
		// a partial run is safe to abandon: flips already written stand, and
		// the next run converges the remainder
		s.logger.Error("Daily installment status sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Daily installment status sweep completed",
		zap.Duration("duration", duration),
		zap.Int("scanned", result.Scanned),
		zap.Int("updated", result.Updated),
	)
}

// TriggerImmediateSweep triggers an immediate recompute run
func (s *StatusSweepScheduler) TriggerImmediateSweep(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.executeSweep(ctx)
	}()

	return nil
}
