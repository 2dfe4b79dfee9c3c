package controller

import (
	"context"

	"github.com/calvinmclean/drv8825/movelog"
)

type moveRecorder interface {
	RecordMove(ctx context.Context, m movelog.Move) (string, error)
}

type noopMoveRecorder struct{}

var _ moveRecorder = noopMoveRecorder{}
var _ moveRecorder = &movelog.Client{}

// RecordMove implements moveRecorder.
func (noopMoveRecorder) RecordMove(context.Context, movelog.Move) (string, error) {
	return "", nil
}
