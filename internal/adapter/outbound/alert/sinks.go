package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos-governance/core/internal/domain/alert"
)

// sinkTimeout bounds every outbound sink call; a sink failure is best-effort
// and must never hold up the dispatcher.
const sinkTimeout = 5 * time.Second

// MessageWebhookSink posts a short, human-readable text message to a
// chat-style webhook (e.g. Slack/Discord-compatible incoming webhooks).
type MessageWebhookSink struct {
	URL    string
	Client *http.Client
}

// NewMessageWebhookSink builds a sink posting to url with http.DefaultClient.
func NewMessageWebhookSink(url string) *MessageWebhookSink {
	return &MessageWebhookSink{URL: url, Client: http.DefaultClient}
}

// Name implements alert.Sink.
func (s *MessageWebhookSink) Name() string { return "message_webhook" }

// Send implements alert.Sink.
func (s *MessageWebhookSink) Send(n alert.Notification) error {
	body, err := json.Marshal(map[string]string{
		"text": fmt.Sprintf("[%s] %s is %s (%s)", n.Reason, n.Environment, n.Status, n.Fingerprint),
	})
	if err != nil {
		return fmt.Errorf("message_webhook: marshal: %w", err)
	}
	return postJSON(s.client(), s.URL, body)
}

func (s *MessageWebhookSink) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

// StructuredWebhookSink posts the full Notification as JSON to an
// arbitrary receiving endpoint (e.g. a downstream incident system).
type StructuredWebhookSink struct {
	URL    string
	Client *http.Client
}

// NewStructuredWebhookSink builds a sink posting to url with http.DefaultClient.
func NewStructuredWebhookSink(url string) *StructuredWebhookSink {
	return &StructuredWebhookSink{URL: url, Client: http.DefaultClient}
}

// Name implements alert.Sink.
func (s *StructuredWebhookSink) Name() string { return "structured_webhook" }

// Send implements alert.Sink.
func (s *StructuredWebhookSink) Send(n alert.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("structured_webhook: marshal: %w", err)
	}
	return postJSON(s.client(), s.URL, body)
}

func (s *StructuredWebhookSink) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

// EmailTransportSink delivers notifications through an email-sending
// webhook (e.g. a transactional email provider's HTTP API), rather than
// speaking SMTP directly.
type EmailTransportSink struct {
	URL      string
	FromAddr string
	ToAddr   string
	Client   *http.Client
}

// NewEmailTransportSink builds a sink posting to url with http.DefaultClient.
func NewEmailTransportSink(url, from, to string) *EmailTransportSink {
	return &EmailTransportSink{URL: url, FromAddr: from, ToAddr: to, Client: http.DefaultClient}
}

// Name implements alert.Sink.
func (s *EmailTransportSink) Name() string { return "email_transport" }

// Send implements alert.Sink.
func (s *EmailTransportSink) Send(n alert.Notification) error {
	body, err := json.Marshal(map[string]string{
		"from":    s.FromAddr,
		"to":      s.ToAddr,
		"subject": fmt.Sprintf("%s: %s is %s", n.Reason, n.Environment, n.Status),
		"body":    fmt.Sprintf("fingerprint=%s violationCodes=%v sentAt=%d", n.Fingerprint, n.ViolationCodes, n.SentAt),
	})
	if err != nil {
		return fmt.Errorf("email_transport: marshal: %w", err)
	}
	return postJSON(s.client(), s.URL, body)
}

func (s *EmailTransportSink) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

func postJSON(client *http.Client, url string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sink returned status %d", resp.StatusCode)
	}
	return nil
}

// Compile-time interface verification.
var (
	_ alert.Sink = (*MessageWebhookSink)(nil)
	_ alert.Sink = (*StructuredWebhookSink)(nil)
	_ alert.Sink = (*EmailTransportSink)(nil)
)
