// Package stripegateway adapts the Stripe SDK to the checkout gateway port.
package stripegateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cartfront/storefront-payments/internal/application/checkout"
	"github.com/cartfront/storefront-payments/internal/observability"
	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go"
	"github.com/stripe/stripe-go/client"
	"github.com/stripe/stripe-go/webhook"
)

const metadataCartID = "cartId"

type Gateway struct {
	api            *client.API
	endpointSecret string
	log            observability.Logger
}

// New builds a gateway bound to one storefront's secret key and webhook
// endpoint secret. Both values are opaque configuration.
func New(secretKey, endpointSecret string, logger observability.Logger) *Gateway {
	if logger == nil {
		logger = observability.NopLogger()
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Gateway{
		api:            api,
		endpointSecret: endpointSecret,
		log:            logger.With(observability.F("component", "stripe_gateway")),
	}
}

func (g *Gateway) CreateIntent(ctx context.Context, req checkout.IntentRequest) (*checkout.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
	}
	params.AddMetadata(metadataCartID, req.CartID)
	params.SetIdempotencyKey(uuid.NewString())

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}

	g.log.Info("payment_intent_created",
		observability.F("intent_id", pi.ID),
		observability.F("cart_id", req.CartID),
		observability.F("amount", req.Amount),
	)
	return &checkout.Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// ParseEvent verifies the webhook signature and flattens the event into the
// gateway-neutral shape. For succeeded intents it pulls the cart id from the
// intent metadata and payment details from the first charge.
func (g *Gateway) ParseEvent(payload []byte, signature string) (*checkout.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.endpointSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", checkout.ErrInvalidSignature, err)
	}

	evt := &checkout.WebhookEvent{
		ID:   event.ID,
		Type: event.Type,
	}
	if event.Type != checkout.EventPaymentIntentSucceeded {
		return evt, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("stripe: decode payment intent from event %s: %w", event.ID, err)
	}

	evt.IntentID = pi.ID
	evt.CartID = pi.Metadata[metadataCartID]
	if pi.Charges != nil && len(pi.Charges.Data) > 0 {
		charge := pi.Charges.Data[0]
		if charge.PaymentMethodDetails != nil {
			evt.PaymentMethod = string(charge.PaymentMethodDetails.Type)
		}
		evt.ReceiptURL = charge.ReceiptURL
	}
	return evt, nil
}
