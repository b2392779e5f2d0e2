package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/Divyam-11/ExamJudge/internal/observe"
)

// NewEmitter returns an observe.Emitter that sends operator events as OTel log
// records via the given LoggerProvider. If provider is nil, returns a no-op emitter.
func NewEmitter(provider *sdklog.LoggerProvider) observe.Emitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("examjudge.operator")}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, observe.Event) error { return nil }

type otelEmitter struct {
	logger otellog.Logger
}

// Emit converts the operator event to an OTel log record and emits it. Best-effort.
func (e *otelEmitter) Emit(ctx context.Context, ev observe.Event) error {
	rec := otellog.Record{}
	rec.SetSeverity(otellog.SeverityWarn)
	rec.SetBody(otellog.StringValue(ev.Message))
	if ev.Component != "" {
		rec.AddAttributes(otellog.String("component", ev.Component))
	}
	if ev.RoomID != "" {
		rec.AddAttributes(otellog.String("room_id", ev.RoomID))
	}
	if ev.Err != nil {
		rec.AddAttributes(otellog.String("error", ev.Err.Error()))
		rec.SetSeverity(otellog.SeverityError)
	}
	if !ev.Time.IsZero() {
		rec.SetTimestamp(ev.Time)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	e.logger.Emit(ctx, rec)
	return nil
}
