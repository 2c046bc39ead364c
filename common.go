package viamtictactoe

import (
	"context"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"

	"go.viam.com/rdk/resource"
	"go.viam.com/utils/trace"
)

var family = resource.ModelNamespace("erh").WithFamily("viam-tictactoe")

var (
	TicTacToeModel   = family.WithModel("tictactoe")
	BoardCameraModel = family.WithModel("board-camera")
)

// startSpan opens a span named after the component and step, e.g. "tictactoe::Session::Turn".
func startSpan(ctx context.Context, component, step string) (context.Context, trace.Span) {
	return trace.StartSpan(ctx, "tictactoe::"+component+"::"+step)
}

func init() {
	// without a collector the spans are simply dropped
	exporter, err := otlptracegrpc.New(context.Background())
	if err == nil {
		trace.AddExporters(exporter)
	}
}
