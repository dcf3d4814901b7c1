package httppresentation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cartfront/storefront-payments/internal/application/checkout"
	domainCart "github.com/cartfront/storefront-payments/internal/domain/cart"
	"github.com/cartfront/storefront-payments/internal/domain/order"
	"github.com/cartfront/storefront-payments/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPusher struct {
	mock.Mock
}

func (m *mockPusher) CreateOrder(ctx context.Context, sub order.Submission, idempotencyKey string) (*order.Confirmation, error) {
	args := m.Called(ctx, sub, idempotencyKey)
	if c := args.Get(0); c != nil {
		return c.(*order.Confirmation), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeGateway skips signature verification and decodes the webhook body as the
// gateway-neutral event shape directly.
type fakeGateway struct {
	intent *checkout.Intent
	err    error
}

func (f *fakeGateway) CreateIntent(_ context.Context, _ checkout.IntentRequest) (*checkout.Intent, error) {
	return f.intent, f.err
}

func (f *fakeGateway) ParseEvent(payload []byte, _ string) (*checkout.WebhookEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var evt checkout.WebhookEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, err
	}
	return &evt, nil
}

func newTestHandler(t *testing.T, pusher checkout.OrderPusher, gateway checkout.PaymentGateway) (*Handler, *memory.CartRepository) {
	t.Helper()
	carts := memory.NewCartRepository()
	svc := checkout.NewService(carts, pusher, gateway, nil, "EUR", nil)
	return NewHandler(svc, nil, nil), carts
}

func seedCart(t *testing.T, carts *memory.CartRepository, id string) {
	t.Helper()
	w := domainCart.NewWrapper(id, domainCart.Cart{
		Items: []domainCart.Item{{SKU: "mug-01", Quantity: 2, Price: domainCart.Price{Gross: 100, Net: 80}}},
		Total: domainCart.Price{Gross: 200, Net: 160},
	}, nil)
	require.NoError(t, carts.Save(context.Background(), w))
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCreateIntentRoute(t *testing.T) {
	gateway := &fakeGateway{intent: &checkout.Intent{ID: "pi_1", ClientSecret: "cs_1"}}
	h, carts := newTestHandler(t, nil, gateway)
	seedCart(t, carts, "cart-1")

	rr := postJSON(t, h.Router(), "/payment/stripe/intent/create", `{"cartId":"cart-1"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "pi_1", resp["intent_id"])
	assert.Equal(t, "cs_1", resp["client_secret"])
}

func TestCreateIntentRoute_CartNotFound(t *testing.T) {
	gateway := &fakeGateway{intent: &checkout.Intent{ID: "pi_1"}}
	h, _ := newTestHandler(t, nil, gateway)

	rr := postJSON(t, h.Router(), "/payment/stripe/intent/create", `{"cartId":"missing"}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateIntentRoute_InvalidBody(t *testing.T) {
	h, _ := newTestHandler(t, nil, &fakeGateway{})

	rr := postJSON(t, h.Router(), "/payment/stripe/intent/create", `not json`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWebhookRoute_SucceededEventSubmitsOnce(t *testing.T) {
	pusher := new(mockPusher)
	h, carts := newTestHandler(t, pusher, &fakeGateway{})
	seedCart(t, carts, "X")

	pusher.On("CreateOrder", mock.Anything, mock.Anything, "X").
		Return(&order.Confirmation{ID: "ord-1"}, nil)

	rr := postJSON(t, h.Router(), "/payment/stripe/intent/webhook",
		`{"ID":"evt_1","Type":"payment_intent.succeeded","IntentID":"pi_1","CartID":"X","PaymentMethod":"card"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	pusher.AssertNumberOfCalls(t, "CreateOrder", 1)

	stored, err := carts.Find(context.Background(), "X")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", stored.OrderID)
}

func TestWebhookRoute_OtherEventIsNoOp(t *testing.T) {
	pusher := new(mockPusher)
	h, carts := newTestHandler(t, pusher, &fakeGateway{})
	seedCart(t, carts, "X")

	rr := postJSON(t, h.Router(), "/payment/stripe/intent/webhook",
		`{"ID":"evt_2","Type":"payment_intent.created","CartID":"X"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	pusher.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookRoute_BadSignature(t *testing.T) {
	h, _ := newTestHandler(t, nil, &fakeGateway{err: checkout.ErrInvalidSignature})

	rr := postJSON(t, h.Router(), "/payment/stripe/intent/webhook", `{}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWebhookRoute_CartNotFound(t *testing.T) {
	pusher := new(mockPusher)
	h, _ := newTestHandler(t, pusher, &fakeGateway{})

	rr := postJSON(t, h.Router(), "/payment/stripe/intent/webhook",
		`{"ID":"evt_3","Type":"payment_intent.succeeded","CartID":"missing"}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	pusher.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestCrystalcoinRoute(t *testing.T) {
	pusher := new(mockPusher)
	h, carts := newTestHandler(t, pusher, &fakeGateway{})
	seedCart(t, carts, "cart-1")

	pusher.On("CreateOrder", mock.Anything, mock.Anything, "cart-1").
		Return(&order.Confirmation{ID: "ord-1"}, nil)

	rr := postJSON(t, h.Router(), "/payment/crystalcoin/confirmed", `{"cartId":"cart-1"}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	var confirmation order.Confirmation
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&confirmation))
	assert.Equal(t, "ord-1", confirmation.ID)
}

func TestCrystalcoinRoute_DuplicateSubmission(t *testing.T) {
	pusher := new(mockPusher)
	h, carts := newTestHandler(t, pusher, &fakeGateway{})

	w := domainCart.NewWrapper("cart-1", domainCart.Cart{Total: domainCart.Price{Gross: 10, Net: 8}}, nil)
	w.OrderID = "ord-existing"
	require.NoError(t, carts.Save(context.Background(), w))

	rr := postJSON(t, h.Router(), "/payment/crystalcoin/confirmed", `{"cartId":"cart-1"}`)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	pusher.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestCrystalcoinRoute_CartNotFound(t *testing.T) {
	pusher := new(mockPusher)
	h, _ := newTestHandler(t, pusher, &fakeGateway{})

	rr := postJSON(t, h.Router(), "/payment/crystalcoin/confirmed", `{"cartId":"missing"}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	pusher.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestHealthRoute(t *testing.T) {
	h, _ := newTestHandler(t, nil, &fakeGateway{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestRouteMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t, nil, &fakeGateway{})

	req := httptest.NewRequest(http.MethodGet, "/payment/crystalcoin/confirmed", nil)
	rr := httptest.NewRecorder()
	h.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
