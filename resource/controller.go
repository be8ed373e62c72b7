package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DefaultMaxDownloads is used when Config.MaxConcurrentDownloads is not set.
const DefaultMaxDownloads = 4

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes caps memory held by caches.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentDownloads is the number of dataset parts fetched at once.
	// If 0, DefaultMaxDownloads.
	MaxConcurrentDownloads int64

	// IOLimitBytesPerSec caps download throughput. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages shared resource budgets.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	dlSem *semaphore.Weighted

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentDownloads <= 0 {
		cfg.MaxConcurrentDownloads = DefaultMaxDownloads
	}

	c := &Controller{
		cfg:   cfg,
		dlSem: semaphore.NewWeighted(cfg.MaxConcurrentDownloads),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns true if acquired, false if the limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return false
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current reserved memory in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// MaxDownloads returns the number of download slots.
func (c *Controller) MaxDownloads() int {
	if c == nil {
		return DefaultMaxDownloads
	}
	return int(c.cfg.MaxConcurrentDownloads)
}

// AcquireDownload reserves a download slot, blocking until one is free or
// ctx is done.
func (c *Controller) AcquireDownload(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.dlSem.Acquire(ctx, 1)
}

// TryAcquireDownload reserves a download slot without blocking.
func (c *Controller) TryAcquireDownload() bool {
	if c == nil {
		return true
	}
	return c.dlSem.TryAcquire(1)
}

// ReleaseDownload releases a download slot.
func (c *Controller) ReleaseDownload() {
	if c == nil {
		return
	}
	c.dlSem.Release(1)
}

// AcquireIO waits until the IO limit allows n bytes. Requests larger than
// the limiter burst are split so they never fail outright.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}

	burst := c.ioLimiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := c.ioLimiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
