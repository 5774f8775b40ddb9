package jobs

import "github.com/vytor/matchflash/internal/models"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueResult(result models.GameResult) error
}
