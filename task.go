package assets

import "context"

// Task is the handle returned by asynchronous metadata operations. It
// completes exactly once, with either a value or an error. In-flight I/O is
// not interrupted; Wait only stops waiting when ctx ends.
type Task[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go runs fn on its own goroutine and returns a task completed with its
// result.
func Go[T any](fn func() (T, error)) *Task[T] {
	task := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(task.done)
		task.value, task.err = fn()
	}()
	return task
}

// Failed returns an already completed task carrying err.
func Failed[T any](err error) *Task[T] {
	task := &Task[T]{done: make(chan struct{}), err: err}
	close(task.done)
	return task
}

// Done is closed when the task completes.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task completes or ctx is done.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Err waits for completion and returns only the error.
func (t *Task[T]) Err() error {
	<-t.done
	return t.err
}
