// Package controller owns the run lifecycle: Idle → Running ⇄ Paused → Stopping → Idle.
//
// At most one worker goroutine runs at a time. Control calls only flip
// cooperative flags on the running engine; the engine observes them once per
// loop iteration.
package controller

import (
	"context"
	"sync"

	backtest "github.com/rxtech-lab/argo-intraday/internal/backtest/engine"
	"github.com/rxtech-lab/argo-intraday/internal/logger"
	"github.com/rxtech-lab/argo-intraday/internal/trading/engine"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"go.uber.org/zap"
)

// Runner is one engine as seen by the controller.
type Runner interface {
	// Run blocks until the run ends
	Run(ctx context.Context) error
	Pause()
	Resume()
	RequestStop(flatten bool)
	Snapshot() types.Snapshot
	Stats() types.RunStats
}

// LiveRunner adapts the live engine with its callbacks.
func LiveRunner(e engine.LiveTradingEngine, callbacks engine.LiveTradingCallbacks) Runner {
	return &liveRunner{LiveTradingEngine: e, callbacks: callbacks}
}

type liveRunner struct {
	engine.LiveTradingEngine
	callbacks engine.LiveTradingCallbacks
}

func (r *liveRunner) Run(ctx context.Context) error {
	return r.LiveTradingEngine.Run(ctx, r.callbacks)
}

// BacktestRunner adapts the replay driver with its callbacks.
func BacktestRunner(e backtest.Engine, callbacks backtest.LifecycleCallbacks) Runner {
	return &backtestRunner{Engine: e, callbacks: callbacks}
}

type backtestRunner struct {
	backtest.Engine
	callbacks backtest.LifecycleCallbacks
}

func (r *backtestRunner) Run(ctx context.Context) error {
	return r.Engine.Run(ctx, r.callbacks)
}

// Controller serializes control requests and supervises the worker.
type Controller struct {
	runners map[types.RunMode]Runner
	log     *logger.Logger

	mu        sync.Mutex
	state     types.EngineState
	mode      types.RunMode
	active    Runner
	cancel    context.CancelFunc
	done      chan struct{}
	lastErr   error
	lastSnap  types.Snapshot
	lastStats types.RunStats
}

// New creates an idle controller. runners maps each supported mode to its engine.
func New(runners map[types.RunMode]Runner, log *logger.Logger) *Controller {
	return &Controller{
		runners:  runners,
		log:      log.Named("controller"),
		state:    types.EngineStateIdle,
		lastSnap: types.IdleSnapshot(),
	}
}

// Start launches a run in the given mode. It fails unless the controller is idle.
func (c *Controller) Start(ctx context.Context, mode types.RunMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != types.EngineStateIdle {
		return errors.Newf(errors.ErrCodeEngineAlreadyRunning, "cannot start %s run while %s", mode, c.state)
	}

	runner, ok := c.runners[mode]
	if !ok || runner == nil {
		return errors.Newf(errors.ErrCodeInvalidParameter, "no engine configured for %s mode", mode)
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	runner.Resume()

	c.state = types.EngineStateRunning
	c.mode = mode
	c.active = runner
	c.cancel = cancel
	c.done = done
	c.lastErr = nil

	c.log.Info("Starting run", zap.String("mode", string(mode)))

	go c.work(runCtx, runner, done)

	return nil
}

// Pause suppresses new entries. Exits and guardrails keep running.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != types.EngineStateRunning {
		return errors.Newf(errors.ErrCodeEngineNotRunning, "cannot pause while %s", c.state)
	}

	c.active.Pause()
	c.state = types.EngineStatePaused

	return nil
}

// Resume re-enables entries after Pause.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != types.EngineStatePaused {
		return errors.Newf(errors.ErrCodeEngineNotRunning, "cannot resume while %s", c.state)
	}

	c.active.Resume()
	c.state = types.EngineStateRunning

	return nil
}

// Stop asks the worker to end the run, closing every open position first when
// flatten is set. It returns before the worker exits; use Wait to block.
func (c *Controller) Stop(flatten bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case types.EngineStateIdle:
		return errors.New(errors.ErrCodeEngineNotRunning, "no run in progress")
	case types.EngineStateStopping:
		if flatten {
			c.active.RequestStop(true)
		}

		return nil
	}

	c.log.Info("Stopping run", zap.Bool("flatten", flatten))

	c.active.RequestStop(flatten)
	c.state = types.EngineStateStopping

	return nil
}

// State returns the current lifecycle state.
func (c *Controller) State() types.EngineState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Snapshot returns the last snapshot published by the running engine, or the
// final snapshot of the previous run when idle.
func (c *Controller) Snapshot() types.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return c.lastSnap
	}

	snapshot := c.active.Snapshot()
	snapshot.State = c.state

	return snapshot
}

// Stats returns the statistics of the last finished run.
func (c *Controller) Stats() types.RunStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastStats
}

// LastError is the error the last run ended with.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastErr
}

// Wait blocks until the current worker exits. It returns immediately when idle.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (c *Controller) work(ctx context.Context, runner Runner, done chan struct{}) {
	defer close(done)

	err := c.runGuarded(ctx, runner)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()

	switch {
	case err == nil:
		c.lastSnap = runner.Snapshot()
		c.lastStats = runner.Stats()
		c.log.Info("Run finished", zap.String("mode", string(c.mode)))
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		c.lastSnap = runner.Snapshot()
		c.lastStats = runner.Stats()
		c.lastErr = err
		c.log.Info("Run cancelled", zap.String("mode", string(c.mode)), zap.Error(err))
	default:
		// in-memory positions are discarded, not reconciled
		cause := errors.CodeOf(err)
		if cause != errors.ErrCodeWorkerCrashed {
			err = errors.Wrap(errors.ErrCodeWorkerCrashed, "worker stopped on an unhandled error", err)
		}

		c.lastSnap = types.IdleSnapshot()
		c.lastStats = types.RunStats{}
		c.lastErr = err
		c.log.Error("Worker crashed, forcing idle",
			zap.String("mode", string(c.mode)),
			zap.Int("cause_code", int(cause)),
			zap.Error(err))
	}

	c.lastSnap.State = types.EngineStateIdle
	c.state = types.EngineStateIdle
	c.active = nil
	c.cancel = nil
}

// runGuarded turns a worker panic into an error.
func (c *Controller) runGuarded(ctx context.Context, runner Runner) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrCodeWorkerCrashed, "worker panicked: %v", r)
		}
	}()

	return runner.Run(ctx)
}
