package jobs

import (
	"github.com/vytor/matchflash/internal/models"
	"github.com/vytor/matchflash/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	resultPool *worker.Pool
	recorder   worker.ResultRecorder
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(resultPool *worker.Pool, recorder worker.ResultRecorder) JobQueue {
	return &WorkerQueue{
		resultPool: resultPool,
		recorder:   recorder,
	}
}

func (q *WorkerQueue) EnqueueResult(result models.GameResult) error {
	return q.resultPool.Submit(&worker.RecordResultJob{
		Recorder: q.recorder,
		Result:   result,
	})
}
