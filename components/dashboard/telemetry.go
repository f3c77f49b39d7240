package dashboard

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// ZapTelemetry writes telemetry events as structured log entries.
type ZapTelemetry struct {
	logger *zap.Logger
}

// NewZapTelemetry wraps logger. A nil logger discards events.
func NewZapTelemetry(logger *zap.Logger) *ZapTelemetry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapTelemetry{logger: logger.Named("telemetry")}
}

// Record logs event at info level with the payload as fields, sorted by
// key. The request id on ctx, if any, is attached.
func (t *ZapTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]zap.Field, 0, len(keys)+2)
	fields = append(fields, zap.String("event", event))
	if meta, ok := RequestFrom(ctx); ok {
		fields = append(fields, zap.String("request_id", meta.RequestID))
	}
	for _, k := range keys {
		fields = append(fields, zap.Any(k, payload[k]))
	}
	t.logger.Info(event, fields...)
}
