package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	jobs []Job
	done chan struct{}
}

func newRecorder(expect int) *recorder {
	return &recorder{done: make(chan struct{}, expect)}
}

func (r *recorder) handle(ctx context.Context, job Job) error {
	r.mu.Lock()
	r.jobs = append(r.jobs, job)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recorder) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for job %d", i+1)
		}
	}
}

func TestQueueProcessesImmediateJob(t *testing.T) {
	rec := newRecorder(1)
	q := NewQueue("test", rec.handle, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "noop", Payload: "p"}))
	rec.wait(t, 1)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.jobs, 1)
	assert.Equal(t, "j1", rec.jobs[0].ID)
	assert.False(t, rec.jobs[0].Enqueued.IsZero())
}

func TestQueueDefersJobUntilRunAt(t *testing.T) {
	rec := newRecorder(1)
	q := NewQueue("test", rec.handle, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	enqueued := time.Now()
	require.NoError(t, q.Enqueue(Job{ID: "deferred", RunAt: enqueued.Add(50 * time.Millisecond)}))

	rec.mu.Lock()
	early := len(rec.jobs)
	rec.mu.Unlock()
	assert.Zero(t, early)

	rec.wait(t, 1)
	assert.GreaterOrEqual(t, time.Since(enqueued), 50*time.Millisecond)
}

func TestQueueRejectsEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(Job{ID: "early"})
	require.Error(t, err)
}

func TestQueueStopDropsParkedJobs(t *testing.T) {
	rec := newRecorder(1)
	q := NewQueue("test", rec.handle, QueueConfig{Workers: 1})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "parked", RunAt: time.Now().Add(time.Hour)}))
	q.Stop()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Empty(t, rec.jobs)
}
