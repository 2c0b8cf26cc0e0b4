package controller

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-intraday/internal/logger"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// fakeRunner blocks in Run until a stop is requested, the context ends or
// finish delivers an outcome.
type fakeRunner struct {
	mu      sync.Mutex
	paused  bool
	flatten bool
	stopped bool
	runs    int

	started chan struct{}
	stop    chan struct{}
	finish  chan func() error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		started: make(chan struct{}, 4),
		stop:    make(chan struct{}, 1),
		finish:  make(chan func() error, 1),
	}
}

func (f *fakeRunner) Run(ctx context.Context) error {
	f.mu.Lock()
	f.runs++
	f.stopped = false
	f.mu.Unlock()

	f.started <- struct{}{}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.stop:
		return nil
	case outcome := <-f.finish:
		return outcome()
	}
}

func (f *fakeRunner) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
}

func (f *fakeRunner) Resume() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = false
}

func (f *fakeRunner) RequestStop(flatten bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.flatten = f.flatten || flatten
	if !f.stopped {
		f.stopped = true
		f.stop <- struct{}{}
	}
}

func (f *fakeRunner) Snapshot() types.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	return types.Snapshot{
		State:     types.EngineStateRunning,
		Session:   types.SessionState{Paused: f.paused},
		Positions: []types.Position{{Key: types.PositionKey{Symbol: "AAPL", Slot: "orb_P1"}}},
	}
}

func (f *fakeRunner) Stats() types.RunStats {
	return types.RunStats{ID: "run_1"}
}

func (f *fakeRunner) isPaused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.paused
}

type ControllerTestSuite struct {
	suite.Suite
	live     *fakeRunner
	backtest *fakeRunner
	ctrl     *Controller
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerTestSuite))
}

func (s *ControllerTestSuite) SetupTest() {
	s.live = newFakeRunner()
	s.backtest = newFakeRunner()
	s.ctrl = New(map[types.RunMode]Runner{
		types.RunModeLive:     s.live,
		types.RunModeBacktest: s.backtest,
	}, logger.NewNopLogger())
}

func (s *ControllerTestSuite) TearDownTest() {
	if s.ctrl.State() != types.EngineStateIdle {
		_ = s.ctrl.Stop(false)
	}

	s.ctrl.Wait()
}

func (s *ControllerTestSuite) waitStarted(runner *fakeRunner) {
	select {
	case <-runner.started:
	case <-time.After(time.Second):
		s.FailNow("runner did not start")
	}
}

func (s *ControllerTestSuite) TestLifecycle() {
	s.Equal(types.EngineStateIdle, s.ctrl.State())
	s.Equal(types.EngineStateIdle, s.ctrl.Snapshot().State)

	s.Require().NoError(s.ctrl.Start(context.Background(), types.RunModeLive))
	s.waitStarted(s.live)
	s.Equal(types.EngineStateRunning, s.ctrl.State())

	s.Require().NoError(s.ctrl.Pause())
	s.True(s.live.isPaused())
	s.Equal(types.EngineStatePaused, s.ctrl.Snapshot().State)

	s.Require().NoError(s.ctrl.Resume())
	s.False(s.live.isPaused())

	s.Require().NoError(s.ctrl.Stop(true))
	s.ctrl.Wait()

	s.Equal(types.EngineStateIdle, s.ctrl.State())
	s.True(s.live.flatten)
	s.NoError(s.ctrl.LastError())
	s.Equal("run_1", s.ctrl.Stats().ID)

	snapshot := s.ctrl.Snapshot()
	s.Equal(types.EngineStateIdle, snapshot.State)
	s.Len(snapshot.Positions, 1)
}

func (s *ControllerTestSuite) TestStartWhileRunningFails() {
	s.Require().NoError(s.ctrl.Start(context.Background(), types.RunModeBacktest))
	s.waitStarted(s.backtest)

	err := s.ctrl.Start(context.Background(), types.RunModeLive)
	s.Require().Error(err)
	s.Equal(errors.ErrCodeEngineAlreadyRunning, errors.GetCode(err))

	s.Require().NoError(s.ctrl.Pause())

	err = s.ctrl.Start(context.Background(), types.RunModeBacktest)
	s.Equal(errors.ErrCodeEngineAlreadyRunning, errors.GetCode(err))
	s.Equal(0, s.live.runs)
}

func (s *ControllerTestSuite) TestControlCallsNeedARun() {
	s.Equal(errors.ErrCodeEngineNotRunning, errors.GetCode(s.ctrl.Pause()))
	s.Equal(errors.ErrCodeEngineNotRunning, errors.GetCode(s.ctrl.Resume()))
	s.Equal(errors.ErrCodeEngineNotRunning, errors.GetCode(s.ctrl.Stop(false)))

	s.Require().NoError(s.ctrl.Start(context.Background(), types.RunModeLive))
	s.waitStarted(s.live)

	s.Equal(errors.ErrCodeEngineNotRunning, errors.GetCode(s.ctrl.Resume()), "resume needs a paused run")
}

func (s *ControllerTestSuite) TestUnknownMode() {
	ctrl := New(map[types.RunMode]Runner{types.RunModeBacktest: s.backtest}, logger.NewNopLogger())

	err := ctrl.Start(context.Background(), types.RunModeLive)
	s.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))
	s.Equal(types.EngineStateIdle, ctrl.State())
}

func (s *ControllerTestSuite) TestStopWhileStoppingIsAccepted() {
	s.Require().NoError(s.ctrl.Start(context.Background(), types.RunModeLive))
	s.waitStarted(s.live)

	s.Require().NoError(s.ctrl.Stop(false))
	s.NoError(s.ctrl.Stop(true))
	s.ctrl.Wait()

	s.True(s.live.flatten)
}

func (s *ControllerTestSuite) TestWorkerPanicForcesIdle() {
	s.Require().NoError(s.ctrl.Start(context.Background(), types.RunModeLive))
	s.waitStarted(s.live)

	s.live.finish <- func() error { panic("nil map") }
	s.ctrl.Wait()

	s.Equal(types.EngineStateIdle, s.ctrl.State())
	s.Equal(errors.ErrCodeWorkerCrashed, errors.GetCode(s.ctrl.LastError()))

	snapshot := s.ctrl.Snapshot()
	s.Equal(types.EngineStateIdle, snapshot.State)
	s.Empty(snapshot.Positions, "in-memory positions are cleared")

	s.Require().NoError(s.ctrl.Start(context.Background(), types.RunModeLive), "a crashed controller can start again")
	s.waitStarted(s.live)
}

func (s *ControllerTestSuite) TestWorkerErrorForcesIdle() {
	s.Require().NoError(s.ctrl.Start(context.Background(), types.RunModeBacktest))
	s.waitStarted(s.backtest)

	s.backtest.finish <- func() error { return fmt.Errorf("disk full") }
	s.ctrl.Wait()

	err := s.ctrl.LastError()
	s.Require().Error(err)
	s.Equal(errors.ErrCodeWorkerCrashed, errors.GetCode(err))
	s.Contains(err.Error(), "disk full")
	s.Empty(s.ctrl.Snapshot().Positions)
	s.Empty(s.ctrl.Stats().ID)
}

func (s *ControllerTestSuite) TestCrashKeepsTheFailingCode() {
	s.Require().NoError(s.ctrl.Start(context.Background(), types.RunModeLive))
	s.waitStarted(s.live)

	s.live.finish <- func() error {
		return errors.New(errors.ErrCodeReconcileFailed, "broker positions unavailable")
	}
	s.ctrl.Wait()

	err := s.ctrl.LastError()
	s.Equal(errors.ErrCodeWorkerCrashed, errors.GetCode(err))
	s.Equal(errors.ErrCodeReconcileFailed, errors.CodeOf(err))
}

func (s *ControllerTestSuite) TestCancellationIsNotACrash() {
	ctx, cancel := context.WithCancel(context.Background())

	s.Require().NoError(s.ctrl.Start(ctx, types.RunModeLive))
	s.waitStarted(s.live)

	cancel()
	s.ctrl.Wait()

	s.ErrorIs(s.ctrl.LastError(), context.Canceled)
	s.False(errors.HasCode(s.ctrl.LastError(), errors.ErrCodeWorkerCrashed))
	s.Len(s.ctrl.Snapshot().Positions, 1)
}

func (s *ControllerTestSuite) TestStartClearsLeftoverPause() {
	s.live.Pause()

	s.Require().NoError(s.ctrl.Start(context.Background(), types.RunModeLive))
	s.waitStarted(s.live)

	s.False(s.live.isPaused())
}
