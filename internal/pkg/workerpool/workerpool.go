// Package workerpool runs best-effort background tasks on a fixed number of workers fed
// from a bounded queue. Task errors and panics are logged, never returned to the submitter.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrStopped   = errors.New("worker pool is stopped")
	ErrQueueFull = errors.New("worker pool queue is full")
)

const (
	DefaultWorkers     = 4
	DefaultQueueSize   = 256
	DefaultTaskTimeout = 30 * time.Second
)

type Config struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

type task struct {
	name       string
	fn         func(ctx context.Context) error
	enqueuedAt time.Time
}

// Pool implements ports.TaskDispatcher.
type Pool struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.RWMutex
	tasks   chan task
	started bool
	stopped bool

	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

func New(cfg Config, logger *zap.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = DefaultTaskTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "worker-pool")),
		tasks:  make(chan task, cfg.QueueSize),
	}
}

// Start launches the workers. Tasks inherit the values of ctx but not its cancellation:
// queued work keeps running after ctx ends and only Stop decides when to abort it.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	p.ctx, p.cancel = context.WithCancel(context.WithoutCancel(ctx))
	p.group, _ = errgroup.WithContext(p.ctx)
	for i := 0; i < p.cfg.Workers; i++ {
		p.group.Go(p.work)
	}
	p.logger.Info("worker pool started",
		zap.Int("workers", p.cfg.Workers),
		zap.Int("queueSize", p.cfg.QueueSize),
	)
}

// Submit queues a task without blocking.
func (p *Pool) Submit(name string, fn func(ctx context.Context) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}

	select {
	case p.tasks <- task{name: name, fn: fn, enqueuedAt: time.Now()}:
		return nil
	default:
		return fmt.Errorf("%w: %s dropped", ErrQueueFull, name)
	}
}

// Stop refuses new tasks and waits for the queued ones to finish. When ctx ends first the
// tasks still running are cancelled.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.tasks)
	started := p.started
	p.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		_ = p.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info("worker pool drained")
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}

func (p *Pool) work() error {
	for t := range p.tasks {
		p.run(t)
	}
	return nil
}

func (p *Pool) run(t task) {
	logger := p.logger.With(zap.String("task", t.name))
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.TaskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("background task panicked", zap.Any("panic", r))
		}
	}()

	start := time.Now()
	if err := t.fn(ctx); err != nil {
		logger.Warn("background task failed",
			zap.Duration("queued", start.Sub(t.enqueuedAt)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	logger.Debug("background task done", zap.Duration("duration", time.Since(start)))
}
