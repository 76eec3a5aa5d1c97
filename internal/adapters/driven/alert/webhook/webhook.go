// Package webhook provides an alert sink that posts failure reports to
// an operator-configured HTTP endpoint. Every alert is also written to
// the local log, so a missing or broken endpoint never hides failures.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/babelkb/babelkb/internal/core/ports/driven"
	"github.com/babelkb/babelkb/internal/logger"
)

// Ensure Sink implements the interface.
var _ driven.AlertSink = (*Sink)(nil)

// DefaultTimeout bounds webhook delivery.
const DefaultTimeout = 10 * time.Second

// Sink delivers alerts to a webhook URL. An empty URL degrades to
// log-only delivery.
type Sink struct {
	client *http.Client
	url    string
}

// payload is the webhook wire format.
type payload struct {
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	RaisedAt string            `json:"raised_at"`
}

// NewSink creates a webhook alert sink.
func NewSink(url string) *Sink {
	return &Sink{
		client: &http.Client{Timeout: DefaultTimeout},
		url:    url,
	}
}

// Alert delivers one failure report. Delivery problems are logged and
// swallowed; alerting must never fail the operation that raised it.
func (s *Sink) Alert(ctx context.Context, message string, fields map[string]string) {
	logger.Warn("Alert: %s %v", message, fields)
	if s.url == "" {
		return
	}

	body, err := json.Marshal(payload{
		Message:  message,
		Fields:   fields,
		RaisedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Warn("Alert payload marshal failed: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		logger.Warn("Alert request failed: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Warn("Alert delivery failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("Alert webhook returned status %d", resp.StatusCode)
	}
}
