// Package domain holds the alert record produced by the correlation engine.
package domain

import "time"

// Severity classifies how large the bagged/scanned discrepancy is.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Status is the alert lifecycle state. The only transition is OPEN → RESOLVED.
type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusResolved Status = "RESOLVED"
)

// TypeUnderscan is the only alert type currently emitted.
const TypeUnderscan = "POS_UNDERSCAN"

// Details carries the correlation inputs that justified the alert.
type Details struct {
	Bagged     int     `json:"bagged"`
	Scanned    int     `json:"scanned"`
	Delta      int     `json:"delta"`
	Confidence float64 `json:"confidence"`
}

// Alert is one scan-avoidance incident for a till. Created only by the alert
// engine; the only mutation after creation is the resolve status transition.
// Resolved alerts remain queryable history and are never deleted.
type Alert struct {
	ID        string    `json:"alertId"`
	Tenant    string    `json:"tenant"`
	StoreID   string    `json:"storeId"`
	TillID    string    `json:"tillId"`
	CameraID  string    `json:"cameraId"`
	Type      string    `json:"type"`
	Severity  Severity  `json:"severity"`
	Details   Details   `json:"details"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
