package session

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-intraday/internal/logger"
)

var runPattern = regexp.MustCompile(`^run_(\d+)$`)

// SessionManager owns the run folder of a live session or a backtest:
//
//	{dataOutputPath}/{YYYY-MM-DD}/run_N/
type SessionManager struct {
	dataOutputPath string
	runID          string
	runNumber      int
	sessionStart   time.Time
	currentDate    string
	currentRunPath string
	mu             sync.Mutex
	logger         *logger.Logger
}

// NewSessionManager creates a new SessionManager instance.
func NewSessionManager(log *logger.Logger) *SessionManager {
	return &SessionManager{
		dataOutputPath: "",
		runID:          "",
		runNumber:      0,
		sessionStart:   time.Time{},
		currentDate:    "",
		currentRunPath: "",
		mu:             sync.Mutex{},
		logger:         log,
	}
}

// Initialize picks the next free run number for the date of sessionStart and
// creates the run folder.
func (s *SessionManager) Initialize(dataOutputPath string, sessionStart time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dataOutputPath = dataOutputPath
	s.sessionStart = sessionStart
	s.currentDate = sessionStart.Format(time.DateOnly)

	runNumber, err := s.nextRunNumber(s.currentDate)
	if err != nil {
		return fmt.Errorf("failed to determine run number: %w", err)
	}

	s.runNumber = runNumber
	s.runID = fmt.Sprintf("run_%d", runNumber)

	if err := s.createRunFolder(); err != nil {
		return err
	}

	s.logger.Info("Session initialized",
		zap.String("run_id", s.runID),
		zap.String("date", s.currentDate),
		zap.String("path", s.currentRunPath),
	)

	return nil
}

//nolint:funcorder // helper method used by Initialize
func (s *SessionManager) nextRunNumber(date string) (int, error) {
	runs, err := listRuns(filepath.Join(s.dataOutputPath, date))
	if err != nil {
		return 0, err
	}

	if len(runs) == 0 {
		return 1, nil
	}

	return runs[len(runs)-1] + 1, nil
}

//nolint:funcorder // helper method used by Initialize and HandleDateBoundary
func (s *SessionManager) createRunFolder() error {
	s.currentRunPath = filepath.Join(s.dataOutputPath, s.currentDate, s.runID)

	if err := os.MkdirAll(s.currentRunPath, 0755); err != nil {
		return fmt.Errorf("failed to create run folder: %w", err)
	}

	return nil
}

// HandleDateBoundary moves the session into a folder for the new date, keeping
// the run number. It reports whether the date changed.
func (s *SessionManager) HandleDateBoundary(timestamp time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	newDate := timestamp.Format(time.DateOnly)
	if newDate == s.currentDate {
		return false, nil
	}

	oldDate := s.currentDate
	s.currentDate = newDate

	if err := s.createRunFolder(); err != nil {
		return false, err
	}

	s.logger.Info("Date boundary crossed",
		zap.String("old_date", oldDate),
		zap.String("new_date", newDate),
		zap.String("new_path", s.currentRunPath),
	)

	return true, nil
}

// GetCurrentRunPath returns the current run folder path.
func (s *SessionManager) GetCurrentRunPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.currentRunPath
}

// GetRunID returns the session run ID (e.g., "run_1").
func (s *SessionManager) GetRunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.runID
}

func (s *SessionManager) GetRunNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.runNumber
}

func (s *SessionManager) GetSessionStart() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessionStart
}

// GetFilePath returns the full path for a file in the current run folder.
func (s *SessionManager) GetFilePath(filename string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return filepath.Join(s.currentRunPath, filename)
}

// ListSessionsForDate returns the run IDs recorded for date, in run order.
func (s *SessionManager) ListSessionsForDate(date string) ([]string, error) {
	runs, err := listRuns(filepath.Join(s.dataOutputPath, date))
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(runs))
	for _, run := range runs {
		ids = append(ids, fmt.Sprintf("run_%d", run))
	}

	return ids, nil
}

// listRuns returns the sorted run numbers found in datePath.
func listRuns(datePath string) ([]int, error) {
	entries, err := os.ReadDir(datePath)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read date directory: %w", err)
	}

	runs := []int{}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		matches := runPattern.FindStringSubmatch(entry.Name())
		if len(matches) != 2 {
			continue
		}

		num, err := strconv.Atoi(matches[1])
		if err != nil {
			continue
		}

		runs = append(runs, num)
	}

	sort.Ints(runs)

	return runs, nil
}
