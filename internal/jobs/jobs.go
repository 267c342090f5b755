// Package jobs tracks in-process analysis jobs, one per username. A job moves
// from pending to in_progress and ends in completed or failed; terminal states
// never change. Only one live job is allowed per username, a second request
// gets ErrJobInFlight until the first reaches a terminal state.
package jobs

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an analysis job.
type Status string

// Job lifecycle states.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Sentinel errors for job bookkeeping.
var (
	ErrJobInFlight = errors.New("jobs: analysis already in flight for user")
	ErrJobNotFound = errors.New("jobs: no job for user")
)

// Job is a snapshot of one analysis run's state.
type Job struct {
	ID        string    `json:"job_id"`
	Username  string    `json:"username"`
	Status    Status    `json:"status"`
	Stage     string    `json:"stage,omitempty"`
	Progress  int       `json:"progress"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
}

// Store keeps the latest job per username. All methods are safe for
// concurrent use.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

// NewStore returns an empty job store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]*Job)}
}

// Begin registers a new pending job for username. A live (non-terminal)
// existing job makes it fail with ErrJobInFlight; a terminal one is replaced.
func (s *Store) Begin(username string, now time.Time) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.jobs[username]; ok && !cur.Status.Terminal() {
		return Job{}, ErrJobInFlight
	}
	j := &Job{
		ID:        uuid.NewString(),
		Username:  username,
		Status:    StatusPending,
		StartedAt: now,
	}
	s.jobs[username] = j
	return *j, nil
}

// SetProgress moves the job to in_progress and records the current stage and
// percent complete. Updates against terminal or unknown jobs are dropped,
// a pipeline goroutine may report after a failure was already recorded.
func (s *Store) SetProgress(username, stage string, progress int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[username]
	if !ok || j.Status.Terminal() {
		return
	}
	j.Status = StatusInProgress
	j.Stage = stage
	j.Progress = progress
}

// Complete marks the job completed at 100%.
func (s *Store) Complete(username string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[username]
	if !ok || j.Status.Terminal() {
		return
	}
	j.Status = StatusCompleted
	j.Progress = 100
	j.EndedAt = now
}

// Fail marks the job failed with the given reason.
func (s *Store) Fail(username string, reason string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[username]
	if !ok || j.Status.Terminal() {
		return
	}
	j.Status = StatusFailed
	j.Error = reason
	j.EndedAt = now
}

// Get returns a snapshot of the latest job for username.
func (s *Store) Get(username string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[username]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return *j, nil
}
