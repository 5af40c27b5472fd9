// Package domain holds the camera and POS event types ingested per till.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrValidation marks a malformed or incomplete event body. Events failing
// validation are rejected before storage and before any audit write.
var ErrValidation = errors.New("event validation failed")

// CameraEvent is one camera-derived item-detection observation for a till.
// Immutable once stored.
type CameraEvent struct {
	TillID               string    `json:"tillId"`
	CameraID             string    `json:"cameraId"`
	StoreID              string    `json:"storeId"`
	EstimatedItemsBagged int       `json:"estimatedItemsBagged"`
	Confidence           float64   `json:"confidence"`
	ObservedAt           time.Time `json:"observedAt"`
}

// Validate checks required fields. Returns an ErrValidation-wrapped error
// naming the first offending field.
func (e *CameraEvent) Validate() error {
	if e.TillID == "" {
		return fmt.Errorf("%w: tillId is required", ErrValidation)
	}
	if e.CameraID == "" {
		return fmt.Errorf("%w: cameraId is required", ErrValidation)
	}
	if e.EstimatedItemsBagged < 0 {
		return fmt.Errorf("%w: estimatedItemsBagged must be >= 0", ErrValidation)
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be in [0,1]", ErrValidation)
	}
	if e.ObservedAt.IsZero() {
		return fmt.Errorf("%w: observedAt is required", ErrValidation)
	}
	return nil
}

// PosEvent is one point-of-sale scan-count observation for a till.
// Immutable once stored.
type PosEvent struct {
	TillID       string    `json:"tillId"`
	StoreID      string    `json:"storeId"`
	ItemsScanned int       `json:"itemsScanned"`
	ObservedAt   time.Time `json:"observedAt"`
}

// Validate checks required fields. Returns an ErrValidation-wrapped error
// naming the first offending field.
func (e *PosEvent) Validate() error {
	if e.TillID == "" {
		return fmt.Errorf("%w: tillId is required", ErrValidation)
	}
	if e.ItemsScanned < 0 {
		return fmt.Errorf("%w: itemsScanned must be >= 0", ErrValidation)
	}
	if e.ObservedAt.IsZero() {
		return fmt.Errorf("%w: observedAt is required", ErrValidation)
	}
	return nil
}
