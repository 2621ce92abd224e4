package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FSStore persists run summaries and traces under a base directory:
// <baseDir>/runs/<runID>/. Writes use the temp-file + rename pattern, so
// no locking is needed and readers never observe a partial summary.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a filesystem store rooted at baseDir, creating the
// directory if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// BaseDir returns the store's root directory.
func (fs *FSStore) BaseDir() string { return fs.baseDir }

func (fs *FSStore) runDir(runID string) string {
	return filepath.Join(fs.baseDir, "runs", runID)
}

func (fs *FSStore) summaryPath(runID string) string {
	return filepath.Join(fs.runDir(runID), "summary.json")
}

// SaveSummary atomically writes a run's summary, overwriting any previous
// summary for the same run.
func (fs *FSStore) SaveSummary(summary *RunSummary) error {
	if summary == nil {
		return fmt.Errorf("summary cannot be nil")
	}
	if err := summary.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(fs.runDir(summary.RunID), 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}

	finalPath := fs.summaryPath(summary.RunID)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp summary file: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename summary file: %w", err)
	}

	slog.Debug("Run summary saved", "runID", summary.RunID, "path", finalPath)
	return nil
}

// LoadSummary retrieves a run's summary.
func (fs *FSStore) LoadSummary(runID string) (*RunSummary, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}
	data, err := os.ReadFile(fs.summaryPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{RunID: runID}
		}
		return nil, fmt.Errorf("failed to read summary file: %w", err)
	}
	var summary RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to deserialize summary: %w", err)
	}
	return &summary, nil
}

// ListRuns returns metadata for every stored run, skipping directories
// without a readable summary.
func (fs *FSStore) ListRuns() ([]RunInfo, error) {
	runsDir := filepath.Join(fs.baseDir, "runs")
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan runs directory: %w", err)
	}

	var infos []RunInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		summary, err := fs.LoadSummary(entry.Name())
		if err != nil {
			slog.Warn("Skipping unreadable run", "runID", entry.Name(), "error", err)
			continue
		}
		infos = append(infos, RunInfo{
			RunID:      summary.RunID,
			Program:    summary.Program,
			Status:     summary.Status,
			FinishedAt: summary.FinishedAt,
		})
	}
	return infos, nil
}

// DeleteRun removes a run's directory with its summary and trace.
func (fs *FSStore) DeleteRun(runID string) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}
	dir := fs.runDir(runID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{RunID: runID}
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete run directory: %w", err)
	}
	slog.Debug("Run deleted", "runID", runID)
	return nil
}
