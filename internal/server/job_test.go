package server

import (
	"testing"
	"time"
)

func testJobConfig() JobConfig {
	return JobConfig{
		Algorithm:   "ga",
		MinStrength: 35,
		CostWeight:  1,
		CO2Weight:   1,
		PopSize:     30,
		Generations: 10,
		Seed:        42,
	}
}

func TestJobManager_CreateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testJobConfig())

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}
	if job.State != StatePending {
		t.Errorf("Initial state should be pending, got %s", job.State)
	}
	if job.Config.MinStrength != 35 {
		t.Errorf("Config not set correctly")
	}
}

func TestJobManager_GetJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testJobConfig())

	retrieved, exists := jm.GetJob(job.ID)
	if !exists {
		t.Error("Job should exist")
	}
	if retrieved.ID != job.ID {
		t.Error("Retrieved wrong job")
	}

	if _, exists := jm.GetJob("nonexistent"); exists {
		t.Error("Should not find nonexistent job")
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	jm := NewJobManager()

	if len(jm.ListJobs()) != 0 {
		t.Error("Should start with no jobs")
	}

	jm.CreateJob(testJobConfig())
	jm.CreateJob(testJobConfig())

	if jobs := jm.ListJobs(); len(jobs) != 2 {
		t.Errorf("Expected 2 jobs, got %d", len(jobs))
	}
}

func TestJobManager_UpdateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testJobConfig())

	err := jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.Generation = 10
		j.BestFitness = 1.23
	})
	if err != nil {
		t.Errorf("Update should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateRunning {
		t.Error("State should be updated")
	}
	if updated.Generation != 10 {
		t.Error("Generation should be updated")
	}
	if updated.BestFitness != 1.23 {
		t.Error("BestFitness should be updated")
	}

	if err := jm.UpdateJob("nonexistent", func(j *Job) {}); err == nil {
		t.Error("Update of nonexistent job should fail")
	}
}

func TestJobManager_GetRunningJobs(t *testing.T) {
	jm := NewJobManager()

	a := jm.CreateJob(testJobConfig())
	jm.CreateJob(testJobConfig())

	jm.UpdateJob(a.ID, func(j *Job) { j.State = StateRunning })

	running := jm.GetRunningJobs()
	if len(running) != 1 {
		t.Fatalf("Expected 1 running job, got %d", len(running))
	}
	if running[0].ID != a.ID {
		t.Error("Wrong job reported as running")
	}
}

func TestJobManager_GetJobReturnsSnapshot(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testJobConfig())

	first, _ := jm.GetJob(job.ID)
	first.State = StateFailed
	first.Generation = 99

	second, _ := jm.GetJob(job.ID)
	if second.State != StatePending {
		t.Error("Mutating a returned job should not affect the stored one")
	}
	if second.Generation != 0 {
		t.Error("Mutating a returned job should not affect the stored one")
	}
}

func TestJobManager_ConcurrentReadersAndWriter(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testJobConfig())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			jm.UpdateJob(job.ID, func(j *Job) {
				j.State = StateRunning
				j.Generation = i
				j.BestFitness = float64(i)
			})
		}
	}()

	// Status-style reads racing the updates; run with -race to verify
	for i := 0; i < 1000; i++ {
		if j, ok := jm.GetJob(job.ID); ok {
			_ = j.State
			_ = j.Generation
			_ = j.BestFitness
		}
		for _, j := range jm.ListJobs() {
			_ = j.State
		}
		jm.GetRunningJobs()
	}
	<-done
}

func TestJobManager_ThreadSafety(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testJobConfig())

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(generation int) {
			jm.UpdateJob(job.ID, func(j *Job) {
				j.Generation = generation
				time.Sleep(1 * time.Millisecond)
			})
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if _, exists := jm.GetJob(job.ID); !exists {
		t.Error("Job should still exist after concurrent updates")
	}
}
