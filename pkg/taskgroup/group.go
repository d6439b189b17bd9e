// Package taskgroup runs a handful of independent blocking tasks on a bounded
// pool and joins them, keeping every task's outcome in its own slot.
package taskgroup

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of work submitted to a Group.
type Task[T any] func(ctx context.Context) (T, error)

// Result holds either a task's value or the error (or recovered panic) it produced.
type Result[T any] struct {
	Value T
	Err   error
}

// Handle identifies a submitted task. It is the task's index in JoinAll's output.
type Handle int

// Group is a fixed-size worker pool. Tasks never cancel each other: a failure
// only fills that task's Result.Err.
type Group[T any] struct {
	ctx     context.Context
	eg      errgroup.Group
	results []*Result[T]
	joined  bool
}

// New creates a group running at most limit tasks at once. limit <= 0 means no bound.
func New[T any](ctx context.Context, limit int) *Group[T] {
	g := &Group[T]{ctx: ctx}
	if limit > 0 {
		g.eg.SetLimit(limit)
	}
	return g
}

// Submit schedules task. It blocks while every worker slot is busy.
func (g *Group[T]) Submit(task Task[T]) Handle {
	if g.joined {
		panic("taskgroup: Submit after JoinAll")
	}

	slot := &Result[T]{}
	g.results = append(g.results, slot)
	handle := Handle(len(g.results) - 1)

	g.eg.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				slot.Err = fmt.Errorf("task %d panicked: %v", handle, r)
			}
		}()
		slot.Value, slot.Err = task(g.ctx)
		// Errors stay in the slot; returning nil keeps errgroup from short-circuiting.
		return nil
	})

	return handle
}

// JoinAll waits for every submitted task and returns results in submission order.
func (g *Group[T]) JoinAll() []Result[T] {
	_ = g.eg.Wait()
	g.joined = true

	out := make([]Result[T], len(g.results))
	for i, slot := range g.results {
		out[i] = *slot
	}
	return out
}

// Get returns the result for h. Only valid after JoinAll.
func (g *Group[T]) Get(h Handle) Result[T] {
	if !g.joined {
		panic("taskgroup: Get before JoinAll")
	}
	return *g.results[h]
}
