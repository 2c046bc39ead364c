package viamtictactoe

import (
	"context"
	"testing"

	"go.viam.com/test"
)

func TestModels(t *testing.T) {
	test.That(t, TicTacToeModel.String(), test.ShouldEqual, "erh:viam-tictactoe:tictactoe")
	test.That(t, BoardCameraModel.String(), test.ShouldEqual, "erh:viam-tictactoe:board-camera")
}

func TestStartSpan(t *testing.T) {
	ctx, span := startSpan(context.Background(), "Acquirer", "Calibrate")
	defer span.End()
	test.That(t, ctx, test.ShouldNotBeNil)
	test.That(t, span, test.ShouldNotBeNil)
}
