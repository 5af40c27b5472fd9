// Package alert implements the alert engine: severity classification,
// de-duplicated creation keyed by observation pair, the OPEN → RESOLVED
// lifecycle, and the queryable in-memory alert history.
package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"security-core/engine/internal/alert/domain"
)

// ListWindow is how many of the most recent alerts List returns.
const ListWindow = 100

// ClassifySeverity maps a bagged-minus-scanned delta to a severity.
// Deltas below 1 do not qualify for an alert; ok is false for those.
func ClassifySeverity(delta int) (sev domain.Severity, ok bool) {
	switch {
	case delta >= 2:
		return domain.SeverityCritical, true
	case delta == 1:
		return domain.SeverityWarning, true
	default:
		return "", false
	}
}

// Engine owns alert creation and the resolve transition. Alerts are held in
// an append-only slice with id and observation-key indexes; reads get copies
// so callers never observe a concurrent status change mid-struct.
type Engine struct {
	mu     sync.RWMutex
	alerts []*domain.Alert
	byID   map[string]*domain.Alert
	byKey  map[string]*domain.Alert
	nowF   func() time.Time
}

// NewEngine returns an empty alert engine.
func NewEngine() *Engine {
	return &Engine{
		byID:  make(map[string]*domain.Alert),
		byKey: make(map[string]*domain.Alert),
		nowF:  func() time.Time { return time.Now().UTC() },
	}
}

// Create builds and stores an OPEN underscan alert for the observation pair
// identified by key, unless an alert (OPEN or RESOLVED) already exists under
// that key. commit, when non-nil, runs with the new alert before it is
// stored; a commit error aborts creation entirely and the key stays
// unregistered, so a later retry of the same pair creates and commits again.
// Returns the stored alert's copy and whether it was newly created; on a
// duplicate key the existing alert's copy is returned with created false and
// commit is not called.
func (e *Engine) Create(key, tenant, storeID, tillID, cameraID string, sev domain.Severity, d domain.Details, commit func(domain.Alert) error) (domain.Alert, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.byKey[key]; ok {
		return *existing, false, nil
	}
	a := &domain.Alert{
		ID:        uuid.New().String(),
		Tenant:    tenant,
		StoreID:   storeID,
		TillID:    tillID,
		CameraID:  cameraID,
		Type:      domain.TypeUnderscan,
		Severity:  sev,
		Details:   d,
		Status:    domain.StatusOpen,
		CreatedAt: e.nowF(),
	}
	if commit != nil {
		if err := commit(*a); err != nil {
			return domain.Alert{}, false, err
		}
	}
	e.alerts = append(e.alerts, a)
	e.byID[a.ID] = a
	e.byKey[key] = a
	return *a, true, nil
}

// Resolve marks the alert RESOLVED. Unknown ids and already-resolved alerts
// are success no-ops so dashboard retries stay safe; changed reports whether
// a status transition actually happened. commit, when non-nil, runs with the
// resolved copy before the transition is stored; a commit error leaves the
// alert OPEN so a retry repeats both the transition and the commit.
func (e *Engine) Resolve(id string, commit func(domain.Alert) error) (a domain.Alert, changed bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	existing, ok := e.byID[id]
	if !ok || existing.Status == domain.StatusResolved {
		if ok {
			a = *existing
		}
		return a, false, nil
	}
	resolved := *existing
	resolved.Status = domain.StatusResolved
	if commit != nil {
		if err := commit(resolved); err != nil {
			return domain.Alert{}, false, err
		}
	}
	existing.Status = domain.StatusResolved
	return resolved, true, nil
}

// Get returns a copy of the alert with the given id.
func (e *Engine) Get(id string) (domain.Alert, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.byID[id]
	if !ok {
		return domain.Alert{}, false
	}
	return *a, true
}

// List returns copies of the most recent ListWindow alerts, oldest-first.
func (e *Engine) List() []domain.Alert {
	e.mu.RLock()
	defer e.mu.RUnlock()
	start := 0
	if len(e.alerts) > ListWindow {
		start = len(e.alerts) - ListWindow
	}
	out := make([]domain.Alert, 0, len(e.alerts)-start)
	for _, a := range e.alerts[start:] {
		out = append(out, *a)
	}
	return out
}
