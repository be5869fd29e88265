// Package state persists Ralph loop state as a JSON document on disk.
//
// The state file is the only coordination point between the running loop,
// the monitor, and the stop/cancel commands. There is no file locking:
// writers serialize the whole document and replace the file atomically,
// and the runner re-reads the file before each of its own writes so an
// externally written stopping/cancelled status is never clobbered.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tOgg1/ralph/internal/models"
)

const (
	stateDirName  = ".claude"
	stateFileName = "ralph-state.json"
)

// Store errors.
var (
	// ErrNotFound indicates no state file exists for the project.
	ErrNotFound = errors.New("ralph state not found")

	// ErrPersist indicates a state write failed. Persistence failures are
	// fatal to a running loop.
	ErrPersist = errors.New("ralph state persist failed")
)

// Store reads and writes the state file for one project root.
type Store struct {
	projectPath string
}

// NewStore creates a Store rooted at projectPath.
func NewStore(projectPath string) *Store {
	return &Store{projectPath: projectPath}
}

// Path returns the canonical state file path.
func (s *Store) Path() string {
	return filepath.Join(s.projectPath, stateDirName, stateFileName)
}

// Load reads the current state. Returns ErrNotFound when the file does
// not exist or cannot be decoded; readers tolerate both the same way
// (loop not started, or a writer from an incompatible version).
func (s *Store) Load() (*models.RalphState, error) {
	content, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var loaded models.RalphState
	if err := json.Unmarshal(content, &loaded); err != nil {
		return nil, ErrNotFound
	}

	return &loaded, nil
}

// Save serializes the entire state and atomically replaces the state
// file: write to a temp file in the same directory, then rename. A
// concurrent reader sees either the previous or the new document, never
// a partial write.
func (s *Store) Save(loopState *models.RalphState) error {
	loopState.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(loopState, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	dir := filepath.Join(s.projectPath, stateDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	tmp, err := os.CreateTemp(dir, stateFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	if err := os.Rename(tmpPath, s.Path()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	return nil
}

// ModTime returns the state file's modification time, for cheap change
// detection by polling readers. Returns the zero time when absent.
func (s *Store) ModTime() time.Time {
	info, err := os.Stat(s.Path())
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
