package worker

import (
	"context"
	"fmt"

	"github.com/vytor/matchflash/internal/logger"
	"github.com/vytor/matchflash/internal/models"
)

// ResultRecorder persists a finished game.
type ResultRecorder interface {
	Record(ctx context.Context, result models.GameResult) error
}

// RecordResultJob stores the score of one finished game.
type RecordResultJob struct {
	Recorder ResultRecorder
	Result   models.GameResult
}

func (j *RecordResultJob) Name() string { return "record_result" }

func (j *RecordResultJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"game_id": j.Result.GameID,
		"player":  j.Result.Player,
	})
	if err := j.Recorder.Record(ctx, j.Result); err != nil {
		return fmt.Errorf("record result for game %s: %w", j.Result.GameID, err)
	}
	log.Info("result recorded: elapsed=%s clicks=%d hints=%d", j.Result.Elapsed, j.Result.Clicks, j.Result.Hints)
	return nil
}
