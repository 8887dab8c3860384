package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"
)

var ErrQueueClosed = errors.New("task queue closed")

// Task is one unit of background work. OnError runs when Run returns
// an error or panics; it is the place to mark the owning job failed.
type Task struct {
	Name    string
	Run     func(ctx context.Context) error
	OnError func(ctx context.Context, err error)
}

// TaskQueue executes tasks strictly one at a time on a single
// goroutine. Sequential execution keeps duplicate detection and
// retry accounting inside an ingestion job deterministic, and two
// queued jobs never interleave row transactions.
type TaskQueue struct {
	tasks chan Task

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewTaskQueue(buffer int) *TaskQueue {
	q := &TaskQueue{
		tasks: make(chan Task, buffer),
		done:  make(chan struct{}),
	}
	go q.loop()
	return q
}

func (q *TaskQueue) loop() {
	defer close(q.done)
	for task := range q.tasks {
		q.runOne(task)
	}
}

// runOne is the error boundary: a panicking task is contained here
// and reported through its OnError hook, never crashing the worker.
func (q *TaskQueue) runOne(task Task) {
	ctx := context.Background()
	started := time.Now()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[QUEUE] task %q panicked: %v\n%s", task.Name, r, debug.Stack())
				err = fmt.Errorf("task %q panicked: %v", task.Name, r)
			}
		}()
		return task.Run(ctx)
	}()

	if err != nil {
		log.Printf("[QUEUE] task %q failed after %s: %v", task.Name, time.Since(started), err)
		if task.OnError != nil {
			task.OnError(ctx, err)
		}
		return
	}
	log.Printf("[QUEUE] task %q done in %s", task.Name, time.Since(started))
}

// Submit enqueues a task. Blocks when the buffer is full.
func (q *TaskQueue) Submit(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.tasks <- task
	return nil
}

// Shutdown stops intake and waits for queued tasks to finish or ctx
// to expire.
func (q *TaskQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
