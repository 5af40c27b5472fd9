// Package domain holds the audit record type and event names.
package domain

import "time"

// Audit event names. One record is written per ingested event and per alert
// action, in that order of occurrence.
const (
	EventCamera       = "camera.event"
	EventPos          = "pos.event"
	EventAlert        = "security.alert"
	EventAlertResolve = "security.alert.resolve"
)

// Record is one audit log entry. It is serialized with this exact field
// order; the stored line appends the SHA-256 of the serialized form.
// Records are append-only and never mutated.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
}
