package stripegateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/cartfront/storefront-payments/internal/application/checkout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const endpointSecret = "whsec_test_secret"

// signPayload produces a Stripe-Signature header the way Stripe signs webhook
// deliveries: HMAC-SHA256 over "<timestamp>.<payload>".
func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func succeededEventPayload() []byte {
	return []byte(`{
		"id": "evt_1",
		"type": "payment_intent.succeeded",
		"data": {
			"object": {
				"id": "pi_1",
				"object": "payment_intent",
				"metadata": {"cartId": "cart-42"},
				"charges": {
					"data": [
						{
							"payment_method_details": {"type": "card"},
							"receipt_url": "https://receipts.example/1"
						}
					]
				}
			}
		}
	}`)
}

func TestParseEvent_Succeeded(t *testing.T) {
	gateway := New("sk_test_key", endpointSecret, nil)
	payload := succeededEventPayload()

	evt, err := gateway.ParseEvent(payload, signPayload(payload, endpointSecret))
	require.NoError(t, err)

	assert.Equal(t, "evt_1", evt.ID)
	assert.Equal(t, checkout.EventPaymentIntentSucceeded, evt.Type)
	assert.Equal(t, "pi_1", evt.IntentID)
	assert.Equal(t, "cart-42", evt.CartID)
	assert.Equal(t, "card", evt.PaymentMethod)
	assert.Equal(t, "https://receipts.example/1", evt.ReceiptURL)
}

func TestParseEvent_OtherTypeKeepsOnlyEnvelope(t *testing.T) {
	gateway := New("sk_test_key", endpointSecret, nil)
	payload := []byte(`{"id":"evt_2","type":"payment_intent.created","data":{"object":{"id":"pi_2","object":"payment_intent"}}}`)

	evt, err := gateway.ParseEvent(payload, signPayload(payload, endpointSecret))
	require.NoError(t, err)

	assert.Equal(t, "evt_2", evt.ID)
	assert.Equal(t, "payment_intent.created", evt.Type)
	assert.Empty(t, evt.IntentID)
	assert.Empty(t, evt.CartID)
}

func TestParseEvent_BadSignature(t *testing.T) {
	gateway := New("sk_test_key", endpointSecret, nil)
	payload := succeededEventPayload()

	_, err := gateway.ParseEvent(payload, signPayload(payload, "whsec_wrong_secret"))
	assert.ErrorIs(t, err, checkout.ErrInvalidSignature)

	_, err = gateway.ParseEvent(payload, "not-a-signature")
	assert.ErrorIs(t, err, checkout.ErrInvalidSignature)
}
