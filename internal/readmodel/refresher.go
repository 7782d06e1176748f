package readmodel

import (
	"context"
	"log/slog"
	"sync"
	"time"

	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
)

// RefresherConfig holds configuration for the background refresher.
type RefresherConfig struct {
	Interval    time.Duration
	LoadTimeout time.Duration
}

// DefaultRefresherConfig returns sensible defaults.
func DefaultRefresherConfig() RefresherConfig {
	return RefresherConfig{
		Interval:    500 * time.Millisecond,
		LoadTimeout: 5 * time.Second,
	}
}

// Refresher reloads invalidated keys in the background. It wakes up on
// each invalidation and on every tick.
type Refresher struct {
	cache  *Cache
	config RefresherConfig
	logger *slog.Logger

	wg       sync.WaitGroup
	stopChan chan struct{}
	running  bool
	mu       sync.Mutex
}

// NewRefresher creates a refresher for cache.
func NewRefresher(cache *Cache, config RefresherConfig, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Interval <= 0 {
		config.Interval = DefaultRefresherConfig().Interval
	}
	return &Refresher{cache: cache, config: config, logger: logger, stopChan: make(chan struct{})}
}

// Start begins the refresh loop in a goroutine.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.stopChan = make(chan struct{})
	r.mu.Unlock()

	r.wg.Add(1)
	go r.run(ctx)

	r.logger.Info("read model refresher started", "interval", r.config.Interval)
	return nil
}

// Stop waits for the loop to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopChan)
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Info("read model refresher stopped")
}

// IsRunning returns true if the refresher is running.
func (r *Refresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Refresher) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case <-r.cache.signal:
			r.RefreshPending(ctx)
		case <-ticker.C:
			r.RefreshPending(ctx)
		}
	}
}

// RefreshPending reloads every queued key once and returns how many were
// refreshed. Keys whose aggregate is gone are dropped; other failures
// leave the key stale.
func (r *Refresher) RefreshPending(ctx context.Context) int {
	if r.cache.loader == nil {
		r.cache.drain()
		return 0
	}

	refreshed := 0
	for _, key := range r.cache.drain() {
		loadCtx := ctx
		var cancel context.CancelFunc = func() {}
		if r.config.LoadTimeout > 0 {
			loadCtx, cancel = context.WithTimeout(ctx, r.config.LoadTimeout)
		}
		_, err := r.cache.reload(loadCtx, key, true)
		cancel()
		if sharedDomain.IsKind(err, sharedDomain.KindNotFound) {
			r.cache.Forget(key)
			continue
		}
		if err != nil {
			r.logger.Warn("read model refresh failed", "key", key.String(), "error", err)
			continue
		}
		refreshed++
	}
	if refreshed > 0 {
		r.logger.Debug("read model refreshed", "keys", refreshed)
	}
	return refreshed
}
