package notify

import (
	"context"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"security-core/engine/internal/alert/domain"
)

// OtelSink emits each alert as an OTel log record so alerts land in the same
// pipeline as the rest of the service's structured telemetry. Optional;
// enabled when an OTLP endpoint is configured.
type OtelSink struct {
	logger otellog.Logger
}

// NewOtelSink returns a sink emitting via provider. Returns nil if provider
// is nil.
func NewOtelSink(provider *sdklog.LoggerProvider) *OtelSink {
	if provider == nil {
		return nil
	}
	return &OtelSink{logger: provider.Logger("security-core.alerts")}
}

func (s *OtelSink) Name() string { return "otel" }

// Deliver converts the alert to an OTel log record and emits it.
func (s *OtelSink) Deliver(ctx context.Context, a *domain.Alert) error {
	rec := otellog.Record{}
	rec.SetTimestamp(a.CreatedAt)
	rec.SetBody(otellog.StringValue(Summary(a)))
	rec.AddAttributes(
		otellog.String("alert_id", a.ID),
		otellog.String("tenant", a.Tenant),
		otellog.String("store_id", a.StoreID),
		otellog.String("till_id", a.TillID),
		otellog.String("camera_id", a.CameraID),
		otellog.String("type", a.Type),
		otellog.String("severity", string(a.Severity)),
		otellog.Int("bagged", a.Details.Bagged),
		otellog.Int("scanned", a.Details.Scanned),
		otellog.Int("delta", a.Details.Delta),
		otellog.Float64("confidence", a.Details.Confidence),
	)
	s.logger.Emit(ctx, rec)
	return nil
}
