// Package readmodel caches aggregate views for readers and lets writers
// show in-flight changes before they are confirmed.
//
// A writer publishes a speculative value with UpdateOptimistically, runs its
// command, then confirms the result with Commit or discards it with
// Rollback. Only the writer sees its own speculative value; every other
// reader sees the last confirmed one. Versions come from a single counter,
// so an older commit or rollback can never clobber a newer state.
package readmodel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Key identifies a cached view. SubKey selects a derived view of the
// aggregate, such as an organization's team list.
type Key struct {
	AggregateType string
	AggregateID   uuid.UUID
	SubKey        string
}

func (k Key) String() string {
	if k.SubKey == "" {
		return fmt.Sprintf("%s:%s", k.AggregateType, k.AggregateID)
	}
	return fmt.Sprintf("%s:%s:%s", k.AggregateType, k.AggregateID, k.SubKey)
}

// ClientID identifies a writer for read-your-writes.
type ClientID string

// Version orders cache writes. Zero means no version.
type Version uint64

type speculative struct {
	value   any
	version Version
	writer  ClientID
}

type entry struct {
	confirmed    any
	version      Version
	hasConfirmed bool
	stale        bool
	pending      *speculative
}

// Cache holds confirmed and speculative views. It is safe for concurrent
// use: reads share a lock, writes are serialized.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*entry
	last    Version

	loader Loader
	logger *slog.Logger

	queueMu sync.Mutex
	queued  map[Key]struct{}
	signal  chan struct{}
}

// New creates a cache that fills misses through loader. loader may be nil
// when only the optimistic protocol is used.
func New(loader Loader, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries: make(map[Key]*entry),
		loader:  loader,
		logger:  logger,
		queued:  make(map[Key]struct{}),
		signal:  make(chan struct{}, 1),
	}
}

// nextLocked must be called with mu held for writing.
func (c *Cache) nextLocked() Version {
	c.last++
	return c.last
}

// NextVersion reserves a version for a write that will be committed later.
func (c *Cache) NextVersion() Version {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextLocked()
}

func (c *Cache) entryLocked(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// Invalidate marks key stale and queues it for background refresh.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	c.entryLocked(key).stale = true
	c.mu.Unlock()

	c.enqueue(key)
	c.logger.Debug("cache key invalidated", "key", key.String())
}

// UpdateOptimistically stores value as writer's speculative view of key
// and returns the version to Commit or Rollback with. A newer speculative
// write replaces an older one.
func (c *Cache) UpdateOptimistically(key Key, writer ClientID, value any) Version {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := c.nextLocked()
	c.entryLocked(key).pending = &speculative{value: value, version: v, writer: writer}
	return v
}

// Rollback discards the speculative value written at version. It reports
// whether anything was discarded: a rollback for a version older than the
// confirmed one, or for a speculative write already replaced, does nothing.
func (c *Cache) Rollback(key Key, version Version) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || version < e.version {
		return false
	}
	if e.pending == nil || e.pending.version != version {
		return false
	}
	e.pending = nil
	return true
}

// Commit confirms value at version. Commits older than the confirmed
// version are ignored. A speculative value at or below version is
// superseded and dropped. Reports whether value was stored.
func (c *Cache) Commit(key Key, version Version, value any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	if version < e.version {
		c.logger.Debug("stale cache commit ignored", "key", key.String(), "version", version, "confirmed", e.version)
		return false
	}
	e.confirmed = value
	e.version = version
	e.hasConfirmed = true
	e.stale = false
	if e.pending != nil && e.pending.version <= version {
		e.pending = nil
	}
	return true
}

// Confirm stores value as the result of the write that was speculative at
// optimistic. It takes a fresh version, so a reload that reserved its
// version while the write was in flight cannot replace the confirmed
// result. Only the speculative value at optimistic is dropped; a newer one
// from another writer stays.
func (c *Cache) Confirm(key Key, optimistic Version, value any) Version {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	e.version = c.nextLocked()
	e.confirmed = value
	e.hasConfirmed = true
	e.stale = false
	if e.pending != nil && e.pending.version == optimistic {
		e.pending = nil
	}
	return e.version
}

// Read returns what reader should see for key. The writer of the current
// speculative value reads it back; everyone else gets the confirmed
// value. stale reports that the value awaits refresh.
func (c *Cache) Read(key Key, reader ClientID) (value any, stale, found bool) {
	value, stale, found, _ = c.lookup(key, reader)
	return value, stale, found
}

func (c *Cache) lookup(key Key, reader ClientID) (value any, stale, found, own bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, false, false
	}
	if p := e.pending; p != nil && reader != "" && p.writer == reader {
		return p.value, e.stale, true, true
	}
	if !e.hasConfirmed {
		return nil, e.stale, false, false
	}
	return e.confirmed, e.stale, true, false
}

// Get is Read backed by the loader: a miss or a stale confirmed value is
// loaded and committed before returning. A reader's own speculative value
// is returned as is.
func (c *Cache) Get(ctx context.Context, key Key, reader ClientID) (any, error) {
	value, stale, found, own := c.lookup(key, reader)
	if own || (found && !stale) {
		return value, nil
	}
	if c.loader == nil {
		if found {
			return value, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrNotCached, key)
	}
	return c.reload(ctx, key, stale)
}

// reload fetches key through the loader and confirms the result. The
// version is reserved before loading so that a write confirmed meanwhile
// wins over the loaded value.
func (c *Cache) reload(ctx context.Context, key Key, fresh bool) (any, error) {
	version := c.NextVersion()
	if fresh {
		if ev, ok := c.loader.(Evicter); ok {
			if err := ev.Evict(ctx, key); err != nil {
				c.logger.Warn("snapshot eviction failed", "key", key.String(), "error", err)
			}
		}
	}

	value, err := c.loader.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if !c.Commit(key, version, value) {
		value, _, _ = c.Read(key, "")
	}
	return value, nil
}

// Forget drops key entirely.
func (c *Cache) Forget(key Key) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) enqueue(key Key) {
	c.queueMu.Lock()
	c.queued[key] = struct{}{}
	c.queueMu.Unlock()

	select {
	case c.signal <- struct{}{}:
	default:
	}
}

func (c *Cache) drain() []Key {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()

	if len(c.queued) == 0 {
		return nil
	}
	keys := make([]Key, 0, len(c.queued))
	for k := range c.queued {
		keys = append(keys, k)
	}
	clear(c.queued)
	return keys
}
