// Package store persists optimization runs on the filesystem so they can be
// resumed and inspected after the process exits.
package store

import "github.com/betonlab/mixopt/internal/opt"

// Store defines checkpoint and result persistence for optimization runs.
// Implementations must be safe for concurrent use.
//
// Error conventions:
//   - nil on success
//   - ErrNotFound when the run does not exist (Load/Delete)
//   - other errors wrapped with context via fmt.Errorf("...: %w", err)
type Store interface {
	// SaveCheckpoint atomically writes the checkpoint for a run, replacing
	// any previous one. Implementations use temp file + rename so a crash
	// never leaves a torn checkpoint behind.
	SaveCheckpoint(jobID string, checkpoint *Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a run.
	// Returns ErrNotFound if none exists.
	LoadCheckpoint(jobID string) (*Checkpoint, error)

	// SaveResult atomically writes the final result of a run.
	SaveResult(jobID string, result *opt.Result) error

	// LoadResult retrieves the final result of a run.
	// Returns ErrNotFound if none exists.
	LoadResult(jobID string) (*opt.Result, error)

	// ListCheckpoints returns metadata for every stored run, skipping
	// entries that cannot be read.
	ListCheckpoints() ([]CheckpointInfo, error)

	// DeleteCheckpoint removes a run directory with all its artifacts
	// (checkpoint.json, result.json, trace.jsonl).
	// Returns ErrNotFound if the run does not exist.
	DeleteCheckpoint(jobID string) error
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for it.
var ErrNotFound = &NotFoundError{}

// NotFoundError reports a missing run.
type NotFoundError struct {
	JobID string
}

func (e *NotFoundError) Error() string {
	if e.JobID != "" {
		return "run not found: " + e.JobID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
