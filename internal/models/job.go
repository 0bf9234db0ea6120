package models

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job is one queued run of migration actions (export-origin, import, ...).
type Job struct {
	ID         string     `json:"id"`
	Actions    []string   `json:"actions"`
	Status     string     `json:"status"` // "queued", "running", "completed", "failed"
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
	Output     []string   `json:"output"`
	mu         sync.Mutex
	partial    string
}

// AppendLog adds a log line to the job output.
func (j *Job) AppendLog(line string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Output = append(j.Output, line)
}

// Write splits p into lines and appends each to the job output, so a job can
// back a log sink.
func (j *Job) Write(p []byte) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	buf := j.partial + string(p)
	lines := strings.Split(buf, "\n")
	j.partial = lines[len(lines)-1]
	for _, line := range lines[:len(lines)-1] {
		j.Output = append(j.Output, line)
	}
	return len(p), nil
}

// Sync flushes any unterminated line.
func (j *Job) Sync() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.partial != "" {
		j.Output = append(j.Output, j.partial)
		j.partial = ""
	}
	return nil
}

// LogsSince returns log lines starting from the given index.
func (j *Job) LogsSince(offset int) []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if offset >= len(j.Output) {
		return nil
	}
	lines := make([]string, len(j.Output)-offset)
	copy(lines, j.Output[offset:])
	return lines
}

// State returns the job status under lock.
func (j *Job) State() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Status
}

// Done reports whether the job has finished, successfully or not.
func (j *Job) Done() bool {
	s := j.State()
	return s == "completed" || s == "failed"
}

// Start marks the job as running.
func (j *Job) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = "running"
	now := time.Now()
	j.StartedAt = &now
}

// Complete marks the job as completed.
func (j *Job) Complete() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = "completed"
	now := time.Now()
	j.FinishedAt = &now
}

// Fail marks the job as failed with an error message.
func (j *Job) Fail(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = "failed"
	j.Error = err
	now := time.Now()
	j.FinishedAt = &now
}

// JobInfo is a point-in-time copy of a Job, safe to serialize while the
// job is still running.
type JobInfo struct {
	ID         string     `json:"id"`
	Actions    []string   `json:"actions"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
	Output     []string   `json:"output"`
}

// Info returns a copy of the job's current state.
func (j *Job) Info() JobInfo {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.Output))
	copy(out, j.Output)
	return JobInfo{
		ID:         j.ID,
		Actions:    append([]string(nil), j.Actions...),
		Status:     j.Status,
		CreatedAt:  j.CreatedAt,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
		Error:      j.Error,
		Output:     out,
	}
}

// JobStore is an in-memory thread-safe store for jobs.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobStore creates an empty job store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*Job)}
}

// Create adds a new queued job, assigning it a UUID.
func (s *JobStore) Create(actions []string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := &Job{
		ID:        uuid.New().String(),
		Actions:   append([]string(nil), actions...),
		Status:    "queued",
		CreatedAt: time.Now(),
		Output:    []string{},
	}
	s.jobs[j.ID] = j
	return j
}

// Get returns a job by ID.
func (s *JobStore) Get(id string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[id]
}

// List returns all jobs, most recent first.
func (s *JobStore) List() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		result = append(result, j)
	}
	sort.Slice(result, func(a, b int) bool {
		return result[a].CreatedAt.After(result[b].CreatedAt)
	})
	return result
}
