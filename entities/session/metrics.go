package session

import (
	"context"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("sketch-editor.session")

var (
	commandsTotal   metric.Int64Counter
	rejectionsTotal metric.Int64Counter
	skippedTotal    metric.Int64Counter
	historyMoves    metric.Int64Counter
	documentShapes  metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

var metricsEnabled atomic.Bool

func init() {
	metricsEnabled.Store(true)
}

// SetMetricsEnabled controls whether sessions record metrics.
func SetMetricsEnabled(enabled bool) {
	metricsEnabled.Store(enabled)
}

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		commandsTotal, err = meter.Int64Counter(
			"session_commands_total",
			metric.WithDescription("Commands handled by editing sessions"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		rejectionsTotal, err = meter.Int64Counter(
			"session_rejections_total",
			metric.WithDescription("Commands rejected, by reason code"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		skippedTotal, err = meter.Int64Counter(
			"session_skipped_operations_total",
			metric.WithDescription("Mutate operations tolerated instead of applied"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		historyMoves, err = meter.Int64Counter(
			"session_history_moves_total",
			metric.WithDescription("Undo and redo requests"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		documentShapes, err = meter.Int64Histogram(
			"session_document_shapes",
			metric.WithDescription("Shapes in the document after a change"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordCommand records an accepted or rejected command.
func recordCommand(ctx context.Context, action, status string) {
	if !metricsEnabled.Load() {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}
	commandsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("status", status),
	))
}

func recordRejection(ctx context.Context, code string) {
	if !metricsEnabled.Load() {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}
	rejectionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

func recordApplied(ctx context.Context, skipped, shapes int) {
	if !metricsEnabled.Load() {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}
	if skipped > 0 {
		skippedTotal.Add(ctx, int64(skipped))
	}
	documentShapes.Record(ctx, int64(shapes))
}

// recordHistoryMove records an undo or redo; moved is false at either end.
func recordHistoryMove(ctx context.Context, direction string, moved bool) {
	if !metricsEnabled.Load() {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}
	historyMoves.Add(ctx, 1, metric.WithAttributes(
		attribute.String("direction", direction),
		attribute.Bool("moved", moved),
	))
}
