package cron

import "context"

// Job is one unit of scheduled work. Run is invoked at most once per cycle
// and must be safe to re-run the next day regardless of the previous outcome.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds the jobs a worker executes, in registration order.
type Registry struct {
	jobs []Job
}

// NewRegistry builds a registry from the provided jobs, skipping nils so
// callers can pass optionally-constructed jobs directly.
func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{}
	for _, job := range jobs {
		r.Register(job)
	}
	return r
}

// Register appends a job. Nil jobs are ignored.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs = append(r.jobs, job)
}

// Jobs returns a copy of the registered jobs in order.
func (r *Registry) Jobs() []Job {
	out := make([]Job, len(r.jobs))
	copy(out, r.jobs)
	return out
}
