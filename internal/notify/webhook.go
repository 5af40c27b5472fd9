package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"security-core/engine/internal/alert/domain"
)

// WebhookSink posts alert summaries to a chat-style HTTP endpoint as
// {"text": "<summary>"}. Any HTTP sink accepting that shape works.
type WebhookSink struct {
	url    string
	client *http.Client
}

// NewWebhookSink returns a sink posting to url. client may be nil; then
// http.DefaultClient is used (per-attempt timeouts come from the router's
// context).
func NewWebhookSink(url string, client *http.Client) *WebhookSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookSink{url: url, client: client}
}

func (s *WebhookSink) Name() string { return "webhook" }

// Deliver posts the alert summary. Returns an error if the request fails or
// the endpoint returns non-2xx; the response body is not interpreted.
func (s *WebhookSink) Deliver(ctx context.Context, a *domain.Alert) error {
	payload, err := json.Marshal(map[string]string{"text": Summary(a)})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: post returned %s", resp.Status)
	}
	return nil
}
