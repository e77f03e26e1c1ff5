package client

import (
	"context"
	"net/http"
	"time"
)

// Job statuses.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobSucceeded = "succeeded"
	JobFailed    = "failed"
)

// Job is an asynchronous SD file encode.
type Job struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal reports whether the job has finished.
func (j *Job) IsTerminal() bool {
	return j.Status == JobSucceeded || j.Status == JobFailed
}

// JobsClient calls the SD file job endpoints.
type JobsClient struct {
	client *Client
}

// Submit uploads an SD file.  The returned job may already be terminal when
// the server processes jobs inline.
func (jc *JobsClient) Submit(ctx context.Context, sdf []byte, opts Options, persist bool) (*Job, error) {
	if len(sdf) == 0 {
		return nil, invalidArg("sdf is empty")
	}
	q := opts.query()
	if persist {
		q.Set("persist", "true")
	}
	var job Job
	_, err := jc.client.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/v1/jobs",
		query:       q,
		body:        sdf,
		contentType: contentTypeSDF,
	}, &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (jc *JobsClient) Get(ctx context.Context, id string) (*Job, error) {
	if id == "" {
		return nil, invalidArg("job id is required")
	}
	var job Job
	if err := jc.client.get(ctx, "/api/v1/jobs/"+id, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ResultURL returns a presigned download URL for the job's result file.
func (jc *JobsClient) ResultURL(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", invalidArg("job id is required")
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := jc.client.get(ctx, "/api/v1/jobs/"+id+"/result", nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// Wait polls the job every interval until it is terminal or ctx is done.
func (jc *JobsClient) Wait(ctx context.Context, id string, interval time.Duration) (*Job, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job, err := jc.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if job.IsTerminal() {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

//Personal.AI order the ending
