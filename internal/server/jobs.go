package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chrsmith/kami2-solver/pkg/solver"
)

// DefaultJobTTL is how long jobs stay pollable when Options.JobTTL is zero.
const DefaultJobTTL = time.Hour

// JobStatus tracks a solve job through its lifecycle.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobDone      JobStatus = "done"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// terminal reports whether the status can no longer change.
func (st JobStatus) terminal() bool {
	return st == JobDone || st == JobFailed || st == JobCancelled
}

// Job is one asynchronous solve. A job expires TTL after creation whether
// or not it finished; polling does not extend its life.
type Job struct {
	ID        string         `json:"id"`
	Status    JobStatus      `json:"status"`
	GraphHash string         `json:"graph_hash,omitempty"`
	Result    *solver.Result `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`

	cancel context.CancelFunc
}

func (j *Job) expired(now time.Time) bool {
	return now.After(j.ExpiresAt)
}

// JobStore holds jobs in memory with TTL expiry. All methods are safe for
// concurrent use. Get and Cancel return snapshots, so callers never share
// the stored value with the worker goroutine mutating it.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	ttl  time.Duration
}

// NewJobStore creates an empty store. Zero ttl means DefaultJobTTL.
func NewJobStore(ttl time.Duration) *JobStore {
	if ttl <= 0 {
		ttl = DefaultJobTTL
	}
	return &JobStore{jobs: make(map[string]*Job), ttl: ttl}
}

// Create registers a pending job under a fresh UUID. cancel is invoked
// when the job is cancelled via Cancel or swept while unfinished.
func (s *JobStore) Create(graphHash string, cancel context.CancelFunc) Job {
	now := time.Now()
	job := &Job{
		ID:        uuid.NewString(),
		Status:    JobPending,
		GraphHash: graphHash,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		cancel:    cancel,
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return *job
}

// Get returns a snapshot of the job. Expired jobs are dropped and reported
// as missing.
func (s *JobStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	if ok && !job.expired(time.Now()) {
		snapshot := *job
		s.mu.RUnlock()
		return snapshot, true
	}
	s.mu.RUnlock()

	if ok {
		s.mu.Lock()
		delete(s.jobs, id)
		s.mu.Unlock()
	}
	return Job{}, false
}

// start moves a pending job to running. It returns false when the job was
// cancelled or removed before a worker picked it up.
func (s *JobStore) start(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status != JobPending {
		return false
	}
	job.Status = JobRunning
	return true
}

// finish records the outcome of a running job. A job already cancelled
// keeps its cancelled status even when the worker reports in afterwards.
func (s *JobStore) finish(id string, result *solver.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status.terminal() {
		return
	}
	switch {
	case err != nil:
		job.Status = JobFailed
		job.Error = err.Error()
	case result != nil && result.Cancelled:
		job.Status = JobCancelled
		job.Result = result
	default:
		job.Status = JobDone
		job.Result = result
	}
}

// Cancel stops a pending or running job and returns its snapshot. Finished
// jobs are returned unchanged. The bool reports whether the job exists.
func (s *JobStore) Cancel(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.expired(time.Now()) {
		if ok {
			delete(s.jobs, id)
		}
		return Job{}, false
	}
	if !job.Status.terminal() {
		job.Status = JobCancelled
		if job.cancel != nil {
			job.cancel()
		}
	}
	return *job, true
}

// Cleanup drops expired jobs and returns how many were removed. Unfinished
// expired jobs are cancelled so their workers stop.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, job := range s.jobs {
		if job.expired(now) {
			if !job.Status.terminal() && job.cancel != nil {
				job.cancel()
			}
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored jobs, finished ones included.
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
