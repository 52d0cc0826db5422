// internal/lifecycle/coordinator.go
//
// Process lifecycle coordinator.
//
// Context
// -------
// One forward path, one branch at shutdown:
//
//	Uninitialized → ConfigBuilt → ResourcesReady → Serving → Draining → Stopped
//
//   - ConfigBuilt     Hooks.Build returned a snapshot (it never fails).
//   - gate            Hooks.Validate must pass before anything is acquired.
//   - ResourcesReady  Hooks.Acquire returned the shared resource (the pool).
//   - Serving         the listener is bound and Serve runs in the background.
//   - Draining        a termination signal (or ctx cancellation) arrived.
//
// Draining shuts the listener down, then closes the resource.  That teardown
// runs in its own goroutine and races a deadline measured from the moment
// the signal was received.  Whichever finishes first decides the exit code;
// the loser is abandoned, because the process is about to exit.
//
// Exit codes
// ----------
//   - 0  teardown finished before the deadline without error.
//   - 1  validation failed, acquisition failed, the listener could not bind,
//     Serve failed, teardown returned an error, the deadline elapsed, or a
//     stop request interrupted startup before the service was serving.
//
// Stop requests are watched for the whole run.  One that arrives during
// startup cancels the context passed to Build and Acquire, and the
// deadline is still measured from its receipt.
//
// Notes
// -----
//   - The coordinator never calls os.Exit; cmd/web does that with Run's
//     return value.
//   - Oxford commas, two spaces after periods.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/formapi/internal/config"
	"github.com/yanizio/formapi/internal/metrics"
)

// DefaultDrainDeadline applies when the snapshot has no shutdown timeout.
const DefaultDrainDeadline = 10 * time.Second

// ErrDrainDeadline is logged when teardown loses the race.
var ErrDrainDeadline = errors.New("lifecycle: drain deadline exceeded")

// Resource is the shared handle acquired before serving (the database pool).
type Resource interface {
	Close(ctx context.Context) error
}

// Listener is the network front end.  *server.Server satisfies it.
type Listener interface {
	Listen() error
	Serve() error
	Shutdown(ctx context.Context) error
}

// Hooks are the steps the coordinator sequences.  Build, Acquire, and
// Listen are required; Validate defaults to config.Validate.
type Hooks struct {
	Build    func(ctx context.Context) *config.Config
	Validate func(cfg *config.Config) error
	Acquire  func(ctx context.Context, cfg *config.Config) (Resource, error)
	Listen   func(cfg *config.Config, res Resource) (Listener, error)
}

// Coordinator owns the phase machine for one process.
type Coordinator struct {
	hooks    Hooks
	phase    atomic.Int32
	deadline atomic.Int64 // time.Duration

	cfg atomic.Pointer[config.Config]
	res Resource
	ln  Listener
}

// New returns a coordinator in the Uninitialized phase.
func New(h Hooks) *Coordinator {
	if h.Validate == nil {
		h.Validate = config.Validate
	}
	c := &Coordinator{hooks: h}
	c.deadline.Store(int64(DefaultDrainDeadline))
	return c
}

// Phase reports the current phase.  Safe for concurrent use.
func (c *Coordinator) Phase() Phase { return Phase(c.phase.Load()) }

// Config returns the built snapshot, or nil before ConfigBuilt.
func (c *Coordinator) Config() *config.Config { return c.cfg.Load() }

// Deadline is the drain deadline in effect.
func (c *Coordinator) Deadline() time.Duration { return time.Duration(c.deadline.Load()) }

// set advances the phase.  A phase never moves backwards, so a startup
// goroutine abandoned after a forced exit cannot revive Stopped.
func (c *Coordinator) set(p Phase) {
	for {
		cur := c.phase.Load()
		if int32(p) <= cur {
			return
		}
		if c.phase.CompareAndSwap(cur, int32(p)) {
			metrics.LifecyclePhase.Set(float64(p))
			return
		}
	}
}

// Run starts the service, blocks until a signal arrives on signals (or ctx
// ends, or Serve fails), drains, and returns the process exit code.
//
// The stop request is watched from the first instruction on.  A signal
// during startup cancels the context handed to Build and Acquire, and the
// listener is never bound once it has arrived.
func (c *Coordinator) Run(ctx context.Context, signals <-chan os.Signal) int {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	defer close(done)
	stopped := make(chan time.Time, 1)
	go watch(ctx, signals, done, stopped, cancel)

	started := make(chan error, 1)
	go func() { started <- c.start(runCtx) }()

	select {
	case err := <-started:
		if err != nil {
			zap.S().Errorw("startup failed", "phase", c.Phase().String(), "err", err)
			c.set(Stopped)
			return 1
		}
	case received := <-stopped:
		return c.abort(received, started)
	}

	served := make(chan error, 1)
	go func() { served <- c.ln.Serve() }()
	c.set(Serving)

	exit := 0
	var received time.Time
	select {
	case received = <-stopped:
	case err := <-served:
		received = time.Now()
		if err == nil {
			err = errors.New("listener stopped unexpectedly")
		}
		zap.S().Errorw("server failed", "err", err)
		exit = 1
	}

	if code := c.drain(received); code != 0 {
		exit = code
	}
	return exit
}

// watch reports the first stop request (signal or ctx cancellation) on
// stopped with its receipt time, then cancels the startup context.  It
// returns silently once done is closed.
func watch(ctx context.Context, signals <-chan os.Signal, done <-chan struct{}, stopped chan<- time.Time, cancel context.CancelFunc) {
	select {
	case sig := <-signals:
		zap.S().Infow("received signal, starting graceful shutdown", "signal", sig.String())
	case <-ctx.Done():
		zap.S().Infow("context cancelled, starting graceful shutdown", "err", ctx.Err())
	case <-done:
		return
	}
	stopped <- time.Now()
	cancel()
}

// abort handles a stop request that arrived before Serving.  Startup is
// given until the drain deadline (measured from received) to unwind; a
// startup that still finished binding is drained normally.  An interrupted
// startup exits 1 because the service never became ready.
func (c *Coordinator) abort(received time.Time, started <-chan error) int {
	timer := time.NewTimer(time.Until(received.Add(c.Deadline())))
	defer timer.Stop()

	select {
	case err := <-started:
		if err == nil {
			return c.drain(received)
		}
		zap.S().Errorw("startup interrupted", "phase", c.Phase().String(), "err", err)
		metrics.ShutdownTotal.WithLabelValues("error").Inc()
	case <-timer.C:
		zap.S().Errorw("forced exit during startup", "err", ErrDrainDeadline, "deadline", c.Deadline().String())
		metrics.ShutdownTotal.WithLabelValues("deadline").Inc()
	}
	c.set(Stopped)
	return 1
}

// start walks Uninitialized → ResourcesReady and binds the listener.  It
// gives up between steps once ctx is cancelled.
func (c *Coordinator) start(ctx context.Context) error {
	cfg := c.hooks.Build(ctx)
	c.cfg.Store(cfg)
	if cfg.Lifecycle.ShutdownTimeout > 0 {
		c.deadline.Store(int64(cfg.Lifecycle.ShutdownTimeout))
	}
	c.set(ConfigBuilt)

	if err := c.hooks.Validate(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("before acquiring resources: %w", err)
	}

	res, err := c.hooks.Acquire(ctx, cfg)
	if err != nil {
		return fmt.Errorf("acquire resources: %w", err)
	}
	c.res = res
	c.set(ResourcesReady)

	if err := ctx.Err(); err != nil {
		c.release()
		return fmt.Errorf("before binding listener: %w", err)
	}

	ln, err := c.hooks.Listen(cfg, res)
	if err == nil {
		err = ln.Listen()
	}
	if err != nil {
		c.release()
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddr(), err)
	}
	c.ln = ln

	zap.S().Infow("server listening",
		"addr", cfg.ListenAddr(),
		"environment", cfg.Mode,
		"database", cfg.Database.Address(),
	)
	return nil
}

// release closes the resource after a failed bind.  Startup is already
// failing, so only the log records a close error.
func (c *Coordinator) release() {
	ctx, cancel := context.WithTimeout(context.Background(), c.Deadline())
	defer cancel()
	if err := c.res.Close(ctx); err != nil {
		zap.S().Warnw("resource close after failed startup", "err", err)
	}
}

// drain races teardown against the deadline measured from received.
func (c *Coordinator) drain(received time.Time) int {
	c.set(Draining)
	defer c.set(Stopped)

	ctx, cancel := context.WithDeadline(context.Background(), received.Add(c.Deadline()))
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.teardown(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			metrics.ShutdownTotal.WithLabelValues("error").Inc()
			zap.S().Errorw("error during graceful shutdown", "err", err)
			return 1
		}
		metrics.ShutdownTotal.WithLabelValues("clean").Inc()
		zap.S().Infow("shutdown complete", "elapsed", time.Since(received).String())
		return 0
	case <-ctx.Done():
		metrics.ShutdownTotal.WithLabelValues("deadline").Inc()
		zap.S().Errorw("forced exit", "err", ErrDrainDeadline, "deadline", c.Deadline().String())
		return 1
	}
}

// teardown stops accepting connections, then releases the resource.  Both
// steps run even if the first fails.
func (c *Coordinator) teardown(ctx context.Context) error {
	var errs []error

	if err := c.ln.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	} else {
		zap.S().Infow("HTTP server closed")
	}

	if err := c.res.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("resource close: %w", err))
	} else {
		zap.S().Infow("database connections closed")
	}

	return errors.Join(errs...)
}
