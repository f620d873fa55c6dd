package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/docsum/internal/document"
)

// JobStatus represents the state of a summarization job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusExtracting  JobStatus = "extracting"
	StatusSummarizing JobStatus = "summarizing"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
)

// Job tracks the state of a single document summarization.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	result   *document.Result
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	Pages         int      `json:"pages"`
	Chunks        int      `json:"chunks"`
	MetaSections  int      `json:"meta_sections"`
	MetaSummaries int      `json:"meta_summaries"`
	Errors        []string `json:"errors"`
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

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetCounts records stage sizes as the pipeline advances.
func (j *Job) SetCounts(pages, chunks, metaSections, metaSummaries int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Pages = pages
	j.Progress.Chunks = chunks
	j.Progress.MetaSections = metaSections
	j.Progress.MetaSummaries = metaSummaries
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

// SetResult stores the completed summarization and drops the file bytes.
func (j *Job) SetResult(r *document.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = r
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// Result returns the completed summarization, nil until the job finishes.
func (j *Job) Result() *document.Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID            string                 `json:"job_id"`
	Status        JobStatus              `json:"status"`
	Phase         string                 `json:"phase"`
	Filename      string                 `json:"filename"`
	Title         string                 `json:"title"`
	Progress      Progress               `json:"progress"`
	GlobalSummary string                 `json:"global_summary,omitempty"`
	MetaSummaries []document.MetaSummary `json:"meta_summaries,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state. Summaries are
// included only once the job has completed.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	snap := JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Title:    j.Title,
		Progress: Progress{
			Pages:         j.Progress.Pages,
			Chunks:        j.Progress.Chunks,
			MetaSections:  j.Progress.MetaSections,
			MetaSummaries: j.Progress.MetaSummaries,
			Errors:        errs,
		},
	}
	if j.Status == StatusCompleted && j.result != nil {
		snap.GlobalSummary = j.result.GlobalSummary
		snap.MetaSummaries = j.result.MetaSummaries
	}
	return snap
}
