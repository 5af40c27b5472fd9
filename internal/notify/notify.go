// Package notify delivers alert summaries to outbound channels. Delivery is
// best-effort and fully detached from the request path: a slow or unreachable
// sink can never delay ingestion responses, and a delivery failure never
// fails alert creation.
package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"security-core/engine/internal/alert/domain"
)

// Sink delivers one alert to an outbound channel. Callers use it
// best-effort: log and count errors, never propagate them.
type Sink interface {
	// Name identifies the sink in logs and metrics (e.g. "webhook", "kafka").
	Name() string
	// Deliver sends a single alert. Implementations may block up to the
	// context deadline.
	Deliver(ctx context.Context, a *domain.Alert) error
}

// Summary renders the single-line human-readable alert summary used by
// chat-style sinks.
func Summary(a *domain.Alert) string {
	return fmt.Sprintf("%s: till %s camera %s bagged %d scanned %d (delta %d, severity %s)",
		a.Type, a.TillID, a.CameraID, a.Details.Bagged, a.Details.Scanned, a.Details.Delta, a.Severity)
}

// Router fans each alert out to every configured sink asynchronously.
type Router struct {
	sinks   []Sink
	timeout time.Duration
	retries int
	// onFailure is called once per sink whose delivery budget is exhausted.
	// May be nil.
	onFailure func(sink string)
}

// NewRouter returns a Router over sinks. timeout bounds each delivery
// attempt (default 2s if zero or negative); retries is how many re-attempts
// follow a failed first attempt (0 keeps the single-shot contract).
// onFailure may be nil.
func NewRouter(sinks []Sink, timeout time.Duration, retries int, onFailure func(sink string)) *Router {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	return &Router{sinks: sinks, timeout: timeout, retries: retries, onFailure: onFailure}
}

// Dispatch sends a to every sink, each in its own goroutine with its own
// timeout, detached from the caller's context so request completion or
// cancellation does not abort in-flight deliveries. With no sinks configured
// it returns immediately.
func (r *Router) Dispatch(a domain.Alert) {
	for _, s := range r.sinks {
		go r.deliver(s, a)
	}
}

func (r *Router) deliver(s Sink, a domain.Alert) {
	var err error
	for attempt := 0; attempt <= r.retries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		err = s.Deliver(ctx, &a)
		cancel()
		if err == nil {
			return
		}
		log.Printf("notify: %s delivery failed (attempt %d/%d): %v", s.Name(), attempt+1, r.retries+1, err)
	}
	if r.onFailure != nil {
		r.onFailure(s.Name())
	}
}
