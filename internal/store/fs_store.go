package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/betonlab/mixopt/internal/opt"
)

// FSStore implements Store on the local filesystem. Each run lives under
// <baseDir>/runs/<jobID>/ with checkpoint.json, result.json and trace.jsonl.
//
// All writes go through a temp file + rename, so methods need no locking
// and are safe to call from multiple goroutines.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a filesystem-backed store rooted at baseDir, creating
// the directory if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

func (fs *FSStore) runDir(jobID string) string {
	return filepath.Join(fs.baseDir, "runs", jobID)
}

func (fs *FSStore) checkpointPath(jobID string) string {
	return filepath.Join(fs.runDir(jobID), "checkpoint.json")
}

func (fs *FSStore) resultPath(jobID string) string {
	return filepath.Join(fs.runDir(jobID), "result.json")
}

// writeAtomic serializes v and renames it into place, cleaning up the temp
// file on failure.
func (fs *FSStore) writeAtomic(jobID, path string, v any) error {
	if err := os.MkdirAll(fs.runDir(jobID), 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename into place: %w", err)
	}
	return nil
}

// SaveCheckpoint atomically writes the checkpoint for a run.
func (fs *FSStore) SaveCheckpoint(jobID string, checkpoint *Checkpoint) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}
	if checkpoint == nil {
		return fmt.Errorf("checkpoint cannot be nil")
	}

	if err := fs.writeAtomic(jobID, fs.checkpointPath(jobID), checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	slog.Debug("checkpoint saved", "jobID", jobID, "generation", checkpoint.Generation)
	return nil
}

// LoadCheckpoint retrieves the checkpoint for a run.
func (fs *FSStore) LoadCheckpoint(jobID string) (*Checkpoint, error) {
	if jobID == "" {
		return nil, fmt.Errorf("jobID cannot be empty")
	}

	data, err := fs.readRunFile(jobID, fs.checkpointPath(jobID))
	if err != nil {
		return nil, err
	}

	var checkpoint Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to deserialize checkpoint: %w", err)
	}
	return &checkpoint, nil
}

// SaveResult atomically writes the final result of a run.
func (fs *FSStore) SaveResult(jobID string, result *opt.Result) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}

	if err := fs.writeAtomic(jobID, fs.resultPath(jobID), result); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	slog.Debug("result saved", "jobID", jobID, "feasible", result.Best.Feasible)
	return nil
}

// LoadResult retrieves the final result of a run.
func (fs *FSStore) LoadResult(jobID string) (*opt.Result, error) {
	if jobID == "" {
		return nil, fmt.Errorf("jobID cannot be empty")
	}

	data, err := fs.readRunFile(jobID, fs.resultPath(jobID))
	if err != nil {
		return nil, err
	}

	var result opt.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to deserialize result: %w", err)
	}
	return &result, nil
}

func (fs *FSStore) readRunFile(jobID, path string) ([]byte, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &NotFoundError{JobID: jobID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", filepath.Base(path), err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return data, nil
}

// ListCheckpoints returns metadata for every stored run. Runs whose
// checkpoint cannot be read are logged and skipped.
func (fs *FSStore) ListCheckpoints() ([]CheckpointInfo, error) {
	runsDir := filepath.Join(fs.baseDir, "runs")

	if _, err := os.Stat(runsDir); os.IsNotExist(err) {
		return []CheckpointInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat runs directory: %w", err)
	}

	entries, err := os.ReadDir(runsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var infos []CheckpointInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		jobID := entry.Name()
		if _, err := os.Stat(fs.checkpointPath(jobID)); os.IsNotExist(err) {
			continue
		}

		checkpoint, err := fs.LoadCheckpoint(jobID)
		if err != nil {
			slog.Warn("skipping unreadable checkpoint", "jobID", jobID, "error", err)
			continue
		}
		infos = append(infos, checkpoint.ToInfo())
	}
	return infos, nil
}

// DeleteCheckpoint removes a run directory with all its artifacts.
func (fs *FSStore) DeleteCheckpoint(jobID string) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}

	runDir := fs.runDir(jobID)
	if _, err := os.Stat(runDir); os.IsNotExist(err) {
		return &NotFoundError{JobID: jobID}
	} else if err != nil {
		return fmt.Errorf("failed to stat run directory: %w", err)
	}

	if err := os.RemoveAll(runDir); err != nil {
		return fmt.Errorf("failed to remove run directory: %w", err)
	}
	slog.Debug("run deleted", "jobID", jobID, "path", runDir)
	return nil
}
