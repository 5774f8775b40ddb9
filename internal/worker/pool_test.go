package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/matchflash/internal/models"
	"github.com/vytor/matchflash/internal/worker"
)

type countingJob struct {
	runs *atomic.Int32
	err  error
}

func (j countingJob) Name() string { return "counting" }

func (j countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

type blockingJob struct {
	release chan struct{}
}

func (j blockingJob) Name() string { return "blocking" }

func (j blockingJob) Run(context.Context) error {
	<-j.release
	return nil
}

func TestPool_RunsSubmittedJobs(t *testing.T) {
	pool := worker.NewPool(3, 16)
	pool.Start(context.Background())

	var runs atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, pool.Submit(countingJob{runs: &runs}))
	}
	require.NoError(t, pool.Submit(countingJob{runs: &runs, err: errors.New("boom")}))

	pool.Stop()
	assert.Equal(t, int32(11), runs.Load())
}

func TestPool_SubmitAfterStop(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()

	var runs atomic.Int32
	assert.ErrorIs(t, pool.Submit(countingJob{runs: &runs}), worker.ErrPoolStopped)
}

func TestPool_SubmitWhenFull(t *testing.T) {
	pool := worker.NewPool(1, 1)
	release := make(chan struct{})

	// Not started: the first job fills the only slot.
	require.NoError(t, pool.Submit(blockingJob{release: release}))
	assert.Equal(t, 1, pool.QueueSize())
	assert.ErrorIs(t, pool.Submit(blockingJob{release: release}), worker.ErrQueueFull)

	pool.Start(context.Background())
	close(release)
	pool.Stop()
	assert.Zero(t, pool.QueueSize())
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []models.GameResult
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, r models.GameResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.results = append(f.results, r)
	return nil
}

func TestRecordResultJob(t *testing.T) {
	rec := &fakeRecorder{}
	job := &worker.RecordResultJob{
		Recorder: rec,
		Result:   models.GameResult{GameID: "g1", Player: "ana", ElapsedMS: 1500, FinishedAt: time.Now()},
	}

	assert.Equal(t, "record_result", job.Name())
	require.NoError(t, job.Run(context.Background()))
	require.Len(t, rec.results, 1)
	assert.Equal(t, "g1", rec.results[0].GameID)

	rec.err = errors.New("locked")
	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game g1")
}
