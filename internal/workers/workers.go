// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool runs tasks with at most limit in flight.
type Pool struct {
	limit int
}

// NewPool returns a pool. A non-positive limit means GOMAXPROCS.
func NewPool(limit int) *Pool {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &Pool{limit: limit}
}

// Limit returns the maximum number of concurrent tasks.
func (p *Pool) Limit() int {
	return p.limit
}

// RunAll runs tasks and returns their errors by index. The first failure
// cancels the context handed to the remaining tasks.
func (p *Pool) RunAll(ctx context.Context, tasks []Task) []error {
	errs := make([]error, len(tasks))
	if len(tasks) == 0 {
		return errs
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)

	for i, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = contextCause(ctx, gctx)
				return errs[i]
			}
			errs[i] = task(gctx)
			return errs[i]
		})
	}
	_ = g.Wait()

	return errs
}

// Run is RunAll reduced to the first non-nil error in task order.
func (p *Pool) Run(ctx context.Context, tasks []Task) error {
	for _, err := range p.RunAll(ctx, tasks) {
		if err != nil {
			return err
		}
	}
	return nil
}

// contextCause reports the parent's error when the parent was cancelled,
// the group's otherwise.
func contextCause(parent, group context.Context) error {
	if err := parent.Err(); err != nil {
		return err
	}
	return group.Err()
}
