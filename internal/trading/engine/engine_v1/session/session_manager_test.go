package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-intraday/internal/logger"
)

type SessionManagerTestSuite struct {
	suite.Suite
	tempDir string
	logger  *logger.Logger
	start   time.Time
}

func (s *SessionManagerTestSuite) SetupSuite() {
	s.logger = logger.NewNopLogger()
	s.start = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
}

func (s *SessionManagerTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "session_manager_test_*")
	s.Require().NoError(err)
	s.tempDir = tempDir
}

func (s *SessionManagerTestSuite) TearDownTest() {
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
}

func TestSessionManagerTestSuite(t *testing.T) {
	suite.Run(t, new(SessionManagerTestSuite))
}

func (s *SessionManagerTestSuite) TestInitialize_FirstRun() {
	sm := NewSessionManager(s.logger)

	err := sm.Initialize(s.tempDir, s.start)
	s.Require().NoError(err)

	s.Equal("run_1", sm.GetRunID())
	s.Equal(1, sm.GetRunNumber())
	s.Equal(filepath.Join(s.tempDir, "2025-03-03", "run_1"), sm.GetCurrentRunPath())
	s.DirExists(sm.GetCurrentRunPath())
	s.True(sm.GetSessionStart().Equal(s.start))
}

func (s *SessionManagerTestSuite) TestInitialize_SkipsExistingRuns() {
	dateDir := filepath.Join(s.tempDir, "2025-03-03")
	s.Require().NoError(os.MkdirAll(filepath.Join(dateDir, "run_1"), 0755))
	s.Require().NoError(os.MkdirAll(filepath.Join(dateDir, "run_7"), 0755))
	s.Require().NoError(os.MkdirAll(filepath.Join(dateDir, "notes"), 0755))
	s.Require().NoError(os.WriteFile(filepath.Join(dateDir, "run_9"), []byte("file, not a run"), 0644))

	sm := NewSessionManager(s.logger)
	s.Require().NoError(sm.Initialize(s.tempDir, s.start))

	s.Equal("run_8", sm.GetRunID())
}

func (s *SessionManagerTestSuite) TestConsecutiveSessionsGetNewFolders() {
	first := NewSessionManager(s.logger)
	s.Require().NoError(first.Initialize(s.tempDir, s.start))

	second := NewSessionManager(s.logger)
	s.Require().NoError(second.Initialize(s.tempDir, s.start.Add(time.Hour)))

	s.Equal("run_2", second.GetRunID())
	s.NotEqual(first.GetCurrentRunPath(), second.GetCurrentRunPath())

	runs, err := second.ListSessionsForDate("2025-03-03")
	s.Require().NoError(err)
	s.Equal([]string{"run_1", "run_2"}, runs)
}

func (s *SessionManagerTestSuite) TestHandleDateBoundary() {
	sm := NewSessionManager(s.logger)
	s.Require().NoError(sm.Initialize(s.tempDir, s.start))

	changed, err := sm.HandleDateBoundary(s.start.Add(2 * time.Hour))
	s.Require().NoError(err)
	s.False(changed)

	changed, err = sm.HandleDateBoundary(s.start.Add(24 * time.Hour))
	s.Require().NoError(err)
	s.True(changed)
	s.Equal(filepath.Join(s.tempDir, "2025-03-04", "run_1"), sm.GetCurrentRunPath())
	s.DirExists(sm.GetCurrentRunPath())
}

func (s *SessionManagerTestSuite) TestGetFilePath() {
	sm := NewSessionManager(s.logger)
	s.Require().NoError(sm.Initialize(s.tempDir, s.start))

	s.Equal(filepath.Join(sm.GetCurrentRunPath(), "trades.parquet"), sm.GetFilePath("trades.parquet"))
}

func (s *SessionManagerTestSuite) TestListSessionsForMissingDate() {
	sm := NewSessionManager(s.logger)
	s.Require().NoError(sm.Initialize(s.tempDir, s.start))

	runs, err := sm.ListSessionsForDate("1999-01-01")
	s.Require().NoError(err)
	s.Empty(runs)
}
