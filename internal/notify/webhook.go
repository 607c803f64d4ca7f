package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookNotifier POSTs run outcomes as JSON to a configured endpoint.
type WebhookNotifier struct {
	endpoint string
	client   *http.Client
}

func NewWebhook(endpoint string) *WebhookNotifier {
	return &WebhookNotifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type webhookPayload struct {
	Subject string `json:"subject"`
	Kind    string `json:"kind"`
	Body    any    `json:"body"`
}

func (w *WebhookNotifier) Success(ctx context.Context, n SuccessNotice) error {
	return w.post(ctx, webhookPayload{
		Subject: fmt.Sprintf("Churn Prediction - Success (%s)", n.SnapshotDate),
		Kind:    "success",
		Body:    n,
	})
}

func (w *WebhookNotifier) Failure(ctx context.Context, n FailureNotice) error {
	return w.post(ctx, webhookPayload{
		Subject: fmt.Sprintf("Churn Prediction - Failure (Step: %s)", n.Step),
		Kind:    "failure",
		Body:    n,
	})
}

func (w *WebhookNotifier) post(ctx context.Context, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %s", resp.Status)
	}
	return nil
}
