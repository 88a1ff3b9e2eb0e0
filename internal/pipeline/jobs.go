package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of an import job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusParsing     JobStatus = "parsing"
	StatusResolving   JobStatus = "resolving"
	StatusBuilding    JobStatus = "building"
	StatusValidating  JobStatus = "validating"
	StatusPropagating JobStatus = "propagating"
	StatusStoring     JobStatus = "storing"
	StatusCompleted   JobStatus = "completed"
	// StatusInvalid means the budget was stored but its validation
	// report carries errors (circular references).
	StatusInvalid JobStatus = "completed_invalid"
	StatusFailed  JobStatus = "failed"
)

// Job tracks the state of a single budget file import.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	BudgetID string `json:"budget_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	warnings []string
	errors   []string
}

// Progress tracks import progress and the outcome counters.
type Progress struct {
	Concepts    int      `json:"concepts"`
	Nodes       int      `json:"nodes"`
	Roots       int      `json:"roots"`
	MaxDepth    int      `json:"max_depth"`
	Valid       bool     `json:"valid"`
	TotalAmount string   `json:"total_amount,omitempty"`
	Warnings    []string `json:"warnings"`
	Errors      []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records a fatal problem.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// AddWarning records a non-fatal problem found during the import.
func (j *Job) AddWarning(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.warnings = append(j.warnings, msg)
	j.Progress.Warnings = j.warnings
	j.UpdatedAt = time.Now()
}

// SetConcepts records how many concepts the parse produced.
func (j *Job) SetConcepts(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Concepts = n
	j.UpdatedAt = time.Now()
}

// SetOutcome records the final tree shape and validity.
func (j *Job) SetOutcome(nodes, roots, maxDepth int, valid bool, total string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Nodes = nodes
	j.Progress.Roots = roots
	j.Progress.MaxDepth = maxDepth
	j.Progress.Valid = valid
	j.Progress.TotalAmount = total
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	BudgetID string    `json:"budget_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	warns := j.Progress.Warnings
	if warns == nil {
		warns = []string{}
	}
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		BudgetID: j.BudgetID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Progress: Progress{
			Concepts:    j.Progress.Concepts,
			Nodes:       j.Progress.Nodes,
			Roots:       j.Progress.Roots,
			MaxDepth:    j.Progress.MaxDepth,
			Valid:       j.Progress.Valid,
			TotalAmount: j.Progress.TotalAmount,
			Warnings:    warns,
			Errors:      errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
// Budget IDs derive from it, so re-importing the same file replaces
// the stored budget instead of duplicating it.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
