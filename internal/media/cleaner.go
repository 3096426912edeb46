package media

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// CleanerConfig controls the concurrency characteristics of the cleaner.
type CleanerConfig struct {
	QueueSize int
	Workers   int
}

// Cleaner asynchronously deletes media objects that are no longer referenced:
// replaced avatars and thumbnails, and the files of deleted videos. Handlers
// enqueue locations after the database write commits, so a crash can leak an
// object but never dangle a reference.
type Cleaner struct {
	store  Store
	logger *slog.Logger

	jobs   chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

var errCleanerClosed = errors.New("media cleaner closed")

// NewCleaner constructs a background worker pool that deletes objects.
func NewCleaner(store Store, cfg CleanerConfig, logger *slog.Logger) *Cleaner {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Cleaner{
		store:  store,
		logger: logger,
		jobs:   make(chan string, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}

	c.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go c.worker()
	}

	return c
}

// Enqueue schedules deletion of the provided object locations. Empty
// locations are skipped.
func (c *Cleaner) Enqueue(ctx context.Context, locations ...string) error {
	for _, location := range locations {
		if location == "" {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.ctx.Done():
			return errCleanerClosed
		default:
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.ctx.Done():
			return errCleanerClosed
		case c.jobs <- location:
		}
	}
	return nil
}

// Shutdown waits for the worker pool to drain outstanding jobs.
func (c *Cleaner) Shutdown(ctx context.Context) error {
	c.once.Do(c.cancel)

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// The jobs channel is never closed: a producer blocked in Enqueue while
// Shutdown runs must not panic. Workers stop via context cancellation and
// drain whatever was accepted before it.
func (c *Cleaner) worker() {
	defer c.wg.Done()

	for {
		select {
		case location := <-c.jobs:
			c.delete(location)
		case <-c.ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Cleaner) drain() {
	for {
		select {
		case location := <-c.jobs:
			c.delete(location)
		default:
			return
		}
	}
}

func (c *Cleaner) delete(location string) {
	if c.store == nil {
		c.logger.Error("media cleaner missing store", "location", location)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.store.Delete(ctx, location); err != nil {
		c.logger.Error("media cleanup failed", "location", location, "error", err)
		return
	}

	c.logger.Debug("media object deleted", "location", location)
}
