// Package workers runs bounded batches of per-file tasks.
//
// A batch stops handing out work as soon as one task fails or the parent
// context is cancelled. Tasks already running are expected to watch the
// context they are given.
package workers

import "context"

// Task is a single unit of work.
type Task func(ctx context.Context) error

// Runner executes a batch of tasks and reports one error slot per task.
//
// A nil slot means the task completed. A task that never started because
// the batch was stopped gets the context error that stopped it.
type Runner interface {
	RunAll(ctx context.Context, tasks []Task) []error
}
