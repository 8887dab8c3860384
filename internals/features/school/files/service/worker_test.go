package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueueRunsSequentially(t *testing.T) {
	q := NewTaskQueue(8)

	var mu sync.Mutex
	var order []int
	var running int
	var maxRunning int

	for i := 0; i < 5; i++ {
		i := i
		err := q.Submit(Task{
			Name: "seq",
			Run: func(context.Context) error {
				mu.Lock()
				running++
				if running > maxRunning {
					maxRunning = running
				}
				mu.Unlock()
				time.Sleep(5 * time.Millisecond)
				mu.Lock()
				running--
				order = append(order, i)
				mu.Unlock()
				return nil
			},
		})
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Shutdown(ctx))

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.Equal(t, 1, maxRunning)
}

func TestTaskQueuePanicIsolation(t *testing.T) {
	q := NewTaskQueue(4)

	var gotErr error
	var ranAfter bool

	require.NoError(t, q.Submit(Task{
		Name: "boom",
		Run: func(context.Context) error {
			panic("table missing")
		},
		OnError: func(_ context.Context, err error) {
			gotErr = err
		},
	}))
	require.NoError(t, q.Submit(Task{
		Name: "after",
		Run: func(context.Context) error {
			ranAfter = true
			return nil
		},
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Shutdown(ctx))

	require.Error(t, gotErr)
	assert.Contains(t, gotErr.Error(), "table missing")
	assert.True(t, ranAfter, "a panic must not kill the worker")
}

func TestTaskQueueErrorHook(t *testing.T) {
	q := NewTaskQueue(1)

	want := errors.New("row 3 exploded")
	var got error
	require.NoError(t, q.Submit(Task{
		Name:    "failing",
		Run:     func(context.Context) error { return want },
		OnError: func(_ context.Context, err error) { got = err },
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Shutdown(ctx))
	assert.ErrorIs(t, got, want)
}

func TestTaskQueueSubmitAfterShutdown(t *testing.T) {
	q := NewTaskQueue(1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Shutdown(ctx))

	err := q.Submit(Task{Name: "late", Run: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrQueueClosed)
}
