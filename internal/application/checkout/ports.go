package checkout

import (
	"context"
	"errors"

	"github.com/cartfront/storefront-payments/internal/domain/order"
)

// ErrInvalidSignature marks a webhook delivery that failed signature
// verification. Mapped to a 400 at the HTTP boundary.
var ErrInvalidSignature = errors.New("checkout: invalid webhook signature")

// OrderPusher is the outbound port for the upstream commerce API. The
// idempotency key scopes retried submissions of the same cart to one order.
type OrderPusher interface {
	CreateOrder(ctx context.Context, sub order.Submission, idempotencyKey string) (*order.Confirmation, error)
}

// IntentRequest describes a payment intent to create. Amount is in minor
// currency units.
type IntentRequest struct {
	CartID   string
	Amount   int64
	Currency string
}

// Intent is the provider's created payment intent, reduced to what the
// storefront needs to proceed with the client-side confirmation.
type Intent struct {
	ID           string
	ClientSecret string
}

// WebhookEvent is a provider notification that already passed signature
// verification in the gateway.
type WebhookEvent struct {
	ID            string
	Type          string
	IntentID      string
	CartID        string
	PaymentMethod string
	ReceiptURL    string
}

// PaymentGateway creates payment intents and verifies webhook deliveries.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	ParseEvent(payload []byte, signature string) (*WebhookEvent, error)
}
