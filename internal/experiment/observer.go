package experiment

import (
	"context"
	"log/slog"
	"time"
)

// Observer is notified around every pipeline step.
type Observer interface {
	OnStepStart(ctx context.Context, step string)
	OnStepCompleted(ctx context.Context, step string, err error, d time.Duration)
}

type NoopObserver struct{}

func (NoopObserver) OnStepStart(ctx context.Context, step string) {}
func (NoopObserver) OnStepCompleted(ctx context.Context, step string, err error, d time.Duration) {
}

// LoggingObserver logs step lifecycle events with slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver uses slog.Default() when logger is nil.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnStepStart(ctx context.Context, step string) {
	o.Logger.DebugContext(ctx, "step_start", slog.String("step", step))
}

func (o *LoggingObserver) OnStepCompleted(ctx context.Context, step string, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "step_completed",
		slog.String("step", step),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}
