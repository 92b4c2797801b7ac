package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// Notifier is a fire-and-forget post-processing sink. Callers treat every
// Notify error as observable-only and never surface it to the payment response.
type Notifier interface {
	Notify(ctx context.Context, event PaymentEvent) error
}

type httpNotifier struct {
	name   string
	url    string
	client *http.Client
}

// NewWebhookNotifier dispatches payment events to the merchant webhook endpoint.
func NewWebhookNotifier(url string) Notifier {
	return &httpNotifier{name: "webhook", url: url, client: &http.Client{}}
}

// NewReceiptNotifier asks the receipt service to render and deliver a receipt.
func NewReceiptNotifier(baseURL string) Notifier {
	return &httpNotifier{name: "receipt", url: fmt.Sprintf("%s/receipts", baseURL), client: &http.Client{}}
}

// NewFraudFeedbackNotifier feeds terminal outcomes back to the fraud model.
func NewFraudFeedbackNotifier(baseURL string) Notifier {
	return &httpNotifier{name: "fraud-feedback", url: fmt.Sprintf("%s/feedback", baseURL), client: &http.Client{}}
}

func (n *httpNotifier) Notify(ctx context.Context, event PaymentEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s sink returned status %d", n.name, resp.StatusCode)
	}
	return nil
}
