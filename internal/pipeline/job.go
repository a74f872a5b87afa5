package pipeline

import "context"

// Job is a unit of work a scheduler can trigger.
type Job interface {
	RunOnce(ctx context.Context) error
}

// URLJob runs the pipeline for a fixed URL.
type URLJob struct {
	Runner *Runner
	URL    string
}

// RunOnce implements Job.
func (j URLJob) RunOnce(ctx context.Context) error {
	_, err := j.Runner.Run(ctx, j.URL)
	return err
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context) error

// RunOnce implements Job.
func (f JobFunc) RunOnce(ctx context.Context) error {
	return f(ctx)
}
