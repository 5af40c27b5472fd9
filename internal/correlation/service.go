// Package correlation implements the ingest pipeline: validate, audit,
// store, correlate the till's latest camera and POS observations, classify,
// and route qualifying underscan alerts outward.
package correlation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"time"

	"security-core/engine/internal/alert"
	alertdomain "security-core/engine/internal/alert/domain"
	"security-core/engine/internal/audit"
	auditdomain "security-core/engine/internal/audit/domain"
	"security-core/engine/internal/event"
	eventdomain "security-core/engine/internal/event/domain"
	"security-core/engine/internal/telemetry"
)

// corroborationBoost is added to the camera confidence when the POS side
// corroborates the observation; the blend is capped at maxConfidence. These
// values are a compatibility target and must not change.
const (
	corroborationBoost = 0.2
	maxConfidence      = 0.99
)

// Dispatcher routes a created alert to outbound sinks. Dispatch must not
// block; implementations deliver asynchronously.
type Dispatcher interface {
	Dispatch(a alertdomain.Alert)
}

// Service ties the event store, alert engine, audit log, and notification
// router together. The full ingest path for one till is serialized by a
// per-till lock so a read-then-decide never interleaves with a concurrent
// same-till write; distinct tills proceed independently.
type Service struct {
	tenant  string
	storeID string

	events  *event.Store
	alerts  *alert.Engine
	audit   audit.Appender
	router  Dispatcher
	metrics *telemetry.Metrics

	tills keyedMutex
}

// NewService returns a Service. router and metrics may be nil (delivery
// skipped / counters not recorded); the other dependencies are required.
// storeID is the fallback store identifier for events that carry none.
func NewService(tenant, storeID string, events *event.Store, alerts *alert.Engine, auditLog audit.Appender, router Dispatcher, metrics *telemetry.Metrics) *Service {
	return &Service{
		tenant:  tenant,
		storeID: storeID,
		events:  events,
		alerts:  alerts,
		audit:   auditLog,
		router:  router,
		metrics: metrics,
	}
}

// ObservationKey derives the idempotency key for one (till, camera
// observation, POS observation) pair. Re-delivery of the same pair yields
// the same key, so the same physical incident never produces two alerts.
func ObservationKey(tillID string, cameraObservedAt, posObservedAt time.Time) string {
	s := tillID + "|" + cameraObservedAt.UTC().Format(time.RFC3339Nano) + "|" + posObservedAt.UTC().Format(time.RFC3339Nano)
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// IngestCamera validates, audits, stores evt, and runs the correlation
// decision for its till. The audit write completes before the event becomes
// visible to the decision; a failed audit write fails the ingestion.
func (s *Service) IngestCamera(ctx context.Context, evt *eventdomain.CameraEvent) error {
	if err := evt.Validate(); err != nil {
		return err
	}
	if evt.StoreID == "" {
		evt.StoreID = s.storeID
	}
	unlock := s.tills.lock(evt.TillID)
	defer unlock()
	if err := s.audit.Append(ctx, auditdomain.EventCamera, evt); err != nil {
		return err
	}
	s.events.PutCamera(evt)
	if s.metrics != nil {
		s.metrics.EventsIngested.WithLabelValues("camera").Inc()
	}
	return s.correlate(ctx, evt.TillID)
}

// IngestPos validates, audits, stores evt, and runs the correlation decision
// for its till. Same ordering contract as IngestCamera.
func (s *Service) IngestPos(ctx context.Context, evt *eventdomain.PosEvent) error {
	if err := evt.Validate(); err != nil {
		return err
	}
	if evt.StoreID == "" {
		evt.StoreID = s.storeID
	}
	unlock := s.tills.lock(evt.TillID)
	defer unlock()
	if err := s.audit.Append(ctx, auditdomain.EventPos, evt); err != nil {
		return err
	}
	s.events.PutPos(evt)
	if s.metrics != nil {
		s.metrics.EventsIngested.WithLabelValues("pos").Inc()
	}
	return s.correlate(ctx, evt.TillID)
}

// correlate runs the underscan decision for the till. Caller holds the till
// lock. A missing side is "not yet correlatable", not an error.
func (s *Service) correlate(ctx context.Context, tillID string) error {
	cam, pos := s.events.Latest(tillID)
	if cam == nil || pos == nil {
		return nil
	}
	delta := cam.EstimatedItemsBagged - pos.ItemsScanned
	sev, ok := alert.ClassifySeverity(delta)
	if !ok {
		return nil
	}
	key := ObservationKey(tillID, cam.ObservedAt, pos.ObservedAt)
	details := alertdomain.Details{
		Bagged:     cam.EstimatedItemsBagged,
		Scanned:    pos.ItemsScanned,
		Delta:      delta,
		Confidence: math.Min(maxConfidence, cam.Confidence+corroborationBoost),
	}
	// The alert's audit record must be durable before the alert becomes
	// queryable or is delivered anywhere; a failed append aborts creation so
	// a retry of the same pair can create and audit again.
	a, created, err := s.alerts.Create(key, s.tenant, cam.StoreID, tillID, cam.CameraID, sev, details, func(a alertdomain.Alert) error {
		return s.audit.Append(ctx, auditdomain.EventAlert, a)
	})
	if err != nil {
		return err
	}
	if !created {
		return nil
	}
	if s.metrics != nil {
		s.metrics.AlertsTotal.WithLabelValues(a.Type, string(a.Severity)).Inc()
	}
	if s.router != nil {
		s.router.Dispatch(a)
	}
	return nil
}

// Alerts returns the queryable alert window, oldest-first.
func (s *Service) Alerts() []alertdomain.Alert {
	return s.alerts.List()
}

// Resolve marks the alert RESOLVED. Unknown ids and repeat resolves succeed
// as no-ops; an audit record is written only when the status actually
// transitions, and it is written before the transition commits, so a failed
// write leaves the alert OPEN for a clean retry.
func (s *Service) Resolve(ctx context.Context, id string) error {
	_, _, err := s.alerts.Resolve(id, func(a alertdomain.Alert) error {
		return s.audit.Append(ctx, auditdomain.EventAlertResolve, a)
	})
	return err
}
