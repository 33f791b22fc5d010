package payment

import "encoding/json"

// Webhook event types the reconciler acts on. Everything else is
// acknowledged and discarded.
const (
	EventCheckoutCompleted = "checkout.completed"
	EventPaymentSucceeded  = "payment.succeeded"
)

// WebhookEvent is the provider's envelope. The event ID doubles as the
// idempotency key for replay protection.
type WebhookEvent struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data WebhookData     `json:"data"`
	Raw  json.RawMessage `json:"-"`
}

// WebhookData is the object the event describes.
type WebhookData struct {
	Object WebhookObject `json:"object"`
}

// WebhookObject carries the payment session. Case linkage travels in
// metadata; a session without it cannot be reconciled.
type WebhookObject struct {
	ID          string            `json:"id"`
	AmountTotal int64             `json:"amount_total"`
	Currency    string            `json:"currency"`
	Metadata    map[string]string `json:"metadata"`
}

// Metadata keys set when the checkout session is created.
const (
	MetadataCaseID   = "case_id"
	MetadataPlanType = "plan_type"
)

// ParseWebhookEvent decodes the raw body, keeping the original bytes for
// audit logging.
func ParseWebhookEvent(body []byte) (WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return WebhookEvent{}, err
	}
	event.Raw = append(json.RawMessage(nil), body...)
	return event, nil
}

// Actionable reports whether this event type drives a case transition.
func (e WebhookEvent) Actionable() bool {
	return e.Type == EventCheckoutCompleted || e.Type == EventPaymentSucceeded
}
