package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/betonlab/mixopt/internal/mix"
	"github.com/betonlab/mixopt/internal/store"
)

// JobState represents the current state of a job
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// JobConfig aliases the checkpoint-side run configuration so both packages
// agree on what a job is parameterized by.
type JobConfig = store.RunConfig

// Job is one optimization run tracked by the server.
type Job struct {
	ID     string    `json:"id"`
	State  JobState  `json:"state"`
	Config JobConfig `json:"config"`

	// Best is the incumbent best formulation, updated per generation.
	Best        *mix.Formulation `json:"best,omitempty"`
	BestFitness float64          `json:"bestFitness"`
	Feasible    bool             `json:"feasible"`

	// Cost and CO2 describe the incumbent best (€/m³, kg CO₂/m³).
	Cost float64 `json:"cost"`
	CO2  float64 `json:"co2"`

	// Generation is the last completed generation.
	Generation int `json:"generation"`

	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// JobManager tracks job lifecycles and fans progress out to SSE clients.
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	broadcaster *EventBroadcaster
}

// NewJobManager creates an empty JobManager.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:        make(map[string]*Job),
		broadcaster: NewEventBroadcaster(),
	}
}

// CreateJob registers a new pending job with the given configuration.
// Like all accessors it returns a snapshot, never the tracked struct.
func (jm *JobManager) CreateJob(config JobConfig) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}

	jm.jobs[job.ID] = job
	return job.snapshot()
}

// snapshot copies the job. Best and EndTime are replaced wholesale on
// update, never mutated through, so copying the pointers is enough.
// Callers must hold jm.mu.
func (j *Job) snapshot() *Job {
	copied := *j
	return &copied
}

// GetJob retrieves a snapshot of a job by ID. Concurrent updates by the
// worker never show through it.
func (jm *JobManager) GetJob(id string) (*Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	if !exists {
		return nil, false
	}
	return job.snapshot(), true
}

// ListJobs returns snapshots of all known jobs.
func (jm *JobManager) ListJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]*Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, job.snapshot())
	}
	return jobs
}

// UpdateJob atomically mutates a job under the manager lock.
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}

	updateFn(job)
	return nil
}

// GetRunningJobs returns snapshots of all jobs currently in the running
// state.
func (jm *JobManager) GetRunningJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	running := make([]*Job, 0)
	for _, job := range jm.jobs {
		if job.State == StateRunning {
			running = append(running, job.snapshot())
		}
	}
	return running
}
