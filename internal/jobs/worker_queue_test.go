package jobs_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/matchflash/internal/jobs"
	"github.com/vytor/matchflash/internal/models"
	"github.com/vytor/matchflash/internal/worker"
)

type memoryRecorder struct {
	mu  sync.Mutex
	ids []string
}

func (m *memoryRecorder) Record(_ context.Context, r models.GameResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, r.GameID)
	return nil
}

func TestWorkerQueue_EnqueueResult(t *testing.T) {
	pool := worker.NewPool(1, 4)
	rec := &memoryRecorder{}
	queue := jobs.NewWorkerQueue(pool, rec)

	pool.Start(context.Background())
	require.NoError(t, queue.EnqueueResult(models.GameResult{GameID: "g1"}))
	require.NoError(t, queue.EnqueueResult(models.GameResult{GameID: "g2"}))
	pool.Stop()

	assert.ElementsMatch(t, []string{"g1", "g2"}, rec.ids)
	assert.ErrorIs(t, queue.EnqueueResult(models.GameResult{GameID: "g3"}), worker.ErrPoolStopped)
}
