// Package scheduler runs the periodic subscription expiry sweep.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/arena/internal/billing/application/commands"
)

// Expirer finalizes due cancellations. ExpireSubscriptionsHandler
// implements it.
type Expirer interface {
	Handle(ctx context.Context, cmd commands.ExpireSubscriptionsCommand) (commands.ExpireSubscriptionsResult, error)
}

// Config holds configuration for the expiry scheduler.
type Config struct {
	Interval time.Duration
}

// DefaultConfig returns the hourly sweep used by the worker.
func DefaultConfig() Config {
	return Config{Interval: time.Hour}
}

// Stats describes the sweeps run so far.
type Stats struct {
	IsRunning   bool       `json:"running"`
	Runs        int64      `json:"runs"`
	Cancelled   int64      `json:"cancelled"`
	Failed      int64      `json:"failed"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	LastErrorAt *time.Time `json:"last_error_at,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// ExpiryScheduler sweeps due scheduled cancellations on a fixed interval.
type ExpiryScheduler struct {
	expirer Expirer
	config  Config
	logger  *slog.Logger
	now     func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	running  bool
	mu       sync.Mutex

	statsMu sync.Mutex
	stats   Stats
}

// NewExpiryScheduler creates an ExpiryScheduler.
func NewExpiryScheduler(expirer Expirer, config Config, logger *slog.Logger) *ExpiryScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	return &ExpiryScheduler{
		expirer:  expirer,
		config:   config,
		logger:   logger,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Start begins the sweep loop in a goroutine.
func (s *ExpiryScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("expiry scheduler started", "interval", s.config.Interval)
	return nil
}

// Stop waits for an in-flight sweep and stops the loop.
func (s *ExpiryScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("expiry scheduler stopped")
}

// IsRunning returns true if the scheduler is running.
func (s *ExpiryScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *ExpiryScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			_ = s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep as of now. Partial failures are logged
// and counted; cancelled subscriptions stay cancelled.
func (s *ExpiryScheduler) RunOnce(ctx context.Context) error {
	now := s.now().UTC()
	res, err := s.expirer.Handle(ctx, commands.ExpireSubscriptionsCommand{Now: now})

	s.statsMu.Lock()
	s.stats.Runs++
	s.stats.Cancelled += int64(res.Cancelled)
	s.stats.Failed += int64(res.Failed)
	s.stats.LastRunAt = &now
	if err != nil {
		s.stats.LastErrorAt = &now
		s.stats.LastError = err.Error()
	}
	s.statsMu.Unlock()

	if res.Propagation != nil {
		s.logger.Warn("expiry propagation incomplete", "error", res.Propagation)
	}
	if err != nil {
		s.logger.Error("expiry sweep failed", "cancelled", res.Cancelled, "failed", res.Failed, "error", err)
		return err
	}
	if res.Cancelled > 0 {
		s.logger.Info("expiry sweep completed", "cancelled", res.Cancelled)
	}
	return nil
}

// GetStats returns a snapshot of the scheduler statistics.
func (s *ExpiryScheduler) GetStats() Stats {
	s.statsMu.Lock()
	stats := s.stats
	s.statsMu.Unlock()
	stats.IsRunning = s.IsRunning()
	return stats
}
