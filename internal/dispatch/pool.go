// Package dispatch runs independent work items on a bounded worker pool fed
// by a bounded queue. Submit blocks while the queue is full.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/JaimeStill/steward/pkg/lifecycle"
)

var (
	ErrStopped    = errors.New("dispatch pool stopped")
	ErrNotStarted = errors.New("dispatch pool not started")
)

// Handler processes one item. The context is cancelled when the pool stops.
type Handler[T any] func(ctx context.Context, item T)

// Pool runs a fixed number of workers over a bounded queue of T.
type Pool[T any] struct {
	handle  Handler[T]
	queue   chan T
	workers int
	limiter *rate.Limiter
	logger  *slog.Logger

	once    sync.Once
	started atomic.Bool
	stopped chan struct{}
	active  atomic.Int64
}

// New creates a pool from cfg. Workers start with Run or Start.
func New[T any](cfg *Config, handle Handler[T], logger *slog.Logger) *Pool[T] {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	return &Pool[T]{
		handle:  handle,
		queue:   make(chan T, cfg.QueueSize),
		workers: cfg.Concurrency,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		logger:  logger.With("system", "dispatch"),
		stopped: make(chan struct{}),
	}
}

// Submit enqueues item, blocking while the queue is full until ctx ends or
// the pool stops.
func (p *Pool[T]) Submit(ctx context.Context, item T) error {
	select {
	case <-p.stopped:
		return ErrStopped
	default:
	}

	select {
	case p.queue <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopped:
		return ErrStopped
	}
}

// Queued returns the number of items waiting for a worker.
func (p *Pool[T]) Queued() int {
	return len(p.queue)
}

// Active returns the number of items currently being handled.
func (p *Pool[T]) Active() int {
	return int(p.active.Load())
}

// Ready reports whether workers are running.
func (p *Pool[T]) Ready() bool {
	select {
	case <-p.stopped:
		return false
	default:
		return p.started.Load()
	}
}

// Run starts the workers and blocks until ctx is cancelled and every
// in-flight handler returns. Items still queued when ctx ends are dropped.
// Run may be called once.
func (p *Pool[T]) Run(ctx context.Context) error {
	err := ErrStopped
	p.once.Do(func() {
		err = p.run(ctx)
	})
	return err
}

func (p *Pool[T]) run(ctx context.Context) error {
	defer close(p.stopped)

	g, gctx := errgroup.WithContext(ctx)
	for i := range p.workers {
		g.Go(func() error {
			return p.work(gctx, i)
		})
	}

	p.started.Store(true)
	p.logger.Info("dispatch workers started", "workers", p.workers, "queue", cap(p.queue))

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	p.logger.Info("dispatch workers stopped", "dropped", len(p.queue))
	return err
}

func (p *Pool[T]) work(ctx context.Context, id int) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case item := <-p.queue:
			if err := p.limiter.Wait(ctx); err != nil {
				return ctx.Err()
			}
			p.invoke(ctx, id, item)
		}
	}
}

func (p *Pool[T]) invoke(ctx context.Context, id int, item T) {
	p.active.Add(1)
	defer p.active.Add(-1)

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("dispatch handler panicked", "worker", id, "panic", fmt.Sprint(r))
		}
	}()

	p.handle(ctx, item)
}

// Start runs the pool under the coordinator context. Its drain hook waits
// for in-flight handlers to return.
func (p *Pool[T]) Start(lc *lifecycle.Coordinator) error {
	if p.handle == nil {
		return fmt.Errorf("%w: no handler", ErrNotStarted)
	}

	lc.OnStartup(func() {
		go func() {
			if err := p.Run(lc.Context()); err != nil {
				p.logger.Error("dispatch pool failed", "error", err)
			}
		}()
	})

	lc.OnDrain(func() {
		<-p.stopped
	})

	lc.Check("dispatch", p.Ready)

	return nil
}
