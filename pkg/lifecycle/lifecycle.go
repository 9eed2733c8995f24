// Package lifecycle coordinates startup hooks, readiness, and graceful
// shutdown for the long-lived subsystems of the service.
package lifecycle

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator manages startup and shutdown hooks for the application lifecycle.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	drainWg    sync.WaitGroup
	shutdownWg sync.WaitGroup
	drained    chan struct{}
	drainOnce  sync.Once

	mu      sync.RWMutex
	started bool
	checks  map[string]func() bool
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:     ctx,
		cancel:  cancel,
		drained: make(chan struct{}),
		checks:  make(map[string]func() bool),
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup registers a function to run concurrently during startup.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnDrain registers a function that runs once the context is cancelled.
// Drained closes after every drain hook returns, so in-flight work can
// finish against resources that shutdown hooks release.
func (c *Coordinator) OnDrain(fn func()) {
	c.drainWg.Go(func() {
		<-c.ctx.Done()
		fn()
	})
}

// Drained is closed after cancellation once every drain hook has returned.
func (c *Coordinator) Drained() <-chan struct{} {
	return c.drained
}

// OnShutdown registers a function to run concurrently during shutdown.
// Hooks that release shared resources should block on <-c.Drained();
// others may block on <-c.Context().Done().
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// Check registers a named readiness probe consulted by Ready and Pending.
func (c *Coordinator) Check(name string, fn func() bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = fn
}

// Ready reports whether startup has completed and every registered check passes.
func (c *Coordinator) Ready() bool {
	c.mu.RLock()
	started := c.started
	c.mu.RUnlock()
	return started && len(c.Pending()) == 0
}

// Pending returns the sorted names of checks that currently fail.
func (c *Coordinator) Pending() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var pending []string
	for name, fn := range c.checks {
		if !fn() {
			pending = append(pending, name)
		}
	}
	slices.Sort(pending)
	return pending
}

// WaitForStartup blocks until all startup hooks have completed.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
}

// Shutdown cancels the context and waits for drain and shutdown hooks to
// complete within the given timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	c.drainOnce.Do(func() {
		go func() {
			c.drainWg.Wait()
			close(c.drained)
		}()
	})

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
