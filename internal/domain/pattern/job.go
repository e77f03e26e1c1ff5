package pattern

import (
	"time"

	"github.com/turtacn/molsmarts/pkg/errors"
	"github.com/turtacn/molsmarts/pkg/types/common"
)

// JobStatus is the lifecycle state of a batch encode job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// IsTerminal reports whether no further transition is possible.
func (s JobStatus) IsTerminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// Job is an asynchronous encode of an SD file held in object storage.
type Job struct {
	ID         common.ID `json:"id"`
	Status     JobStatus `json:"status"`
	ObjectKey  string    `json:"object_key"`
	OptionsKey string    `json:"options_key"`
	Total      int       `json:"total"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewJob returns a pending job whose SD file is stored under
// "jobs/<id>.sdf".
func NewJob(optionsKey string) *Job {
	id := common.NewID()
	now := time.Now().UTC()
	return &Job{
		ID:         id,
		Status:     JobPending,
		ObjectKey:  ObjectKeyFor(id),
		OptionsKey: optionsKey,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ObjectKeyFor returns the storage key of a job's SD file.
func ObjectKeyFor(id common.ID) string {
	return "jobs/" + string(id) + ".sdf"
}

// ResultKeyFor returns the storage key of a job's result file.
func ResultKeyFor(id common.ID) string {
	return "results/" + string(id) + ".smarts"
}

// Start moves a pending job to running.  Restarting a running job is
// allowed so that a redelivered message can resume it.
func (j *Job) Start() error {
	if j.Status != JobPending && j.Status != JobRunning {
		return errors.Newf(errors.ErrCodeConflict, "job %s is %s", j.ID, j.Status)
	}
	j.Status = JobRunning
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete records the record counts.  A job with records where every record
// failed is marked failed.
func (j *Job) Complete(succeeded, failed int) error {
	if j.Status != JobRunning {
		return errors.Newf(errors.ErrCodeConflict, "job %s is %s", j.ID, j.Status)
	}
	j.Total = succeeded + failed
	j.Succeeded = succeeded
	j.Failed = failed
	j.Status = JobSucceeded
	if j.Total > 0 && succeeded == 0 {
		j.Status = JobFailed
		j.Error = "no record could be encoded"
	}
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// Fail marks the job failed with reason.
func (j *Job) Fail(reason string) {
	j.Status = JobFailed
	j.Error = reason
	j.UpdatedAt = time.Now().UTC()
}

//Personal.AI order the ending
