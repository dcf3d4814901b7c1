package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cartfront/storefront-payments/internal/application/checkout"
	domainCart "github.com/cartfront/storefront-payments/internal/domain/cart"
	"github.com/cartfront/storefront-payments/internal/observability"
	"github.com/cartfront/storefront-payments/internal/observability/logctx"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	checkoutService *checkout.Service
	log             observability.Logger
	tel             observability.Telemetry
}

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
	headerStripeSig      = "Stripe-Signature"

	routeIntentCreate  = "/payment/stripe/intent/create"
	routeIntentWebhook = "/payment/stripe/intent/webhook"
	routeCoinConfirmed = "/payment/crystalcoin/confirmed"
	routeHealth        = "/health"

	maxWebhookBodyBytes = int64(65536)
)

func NewHandler(checkoutSvc *checkout.Service, logger observability.Logger, tel observability.Telemetry) *Handler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = observability.NopLogger()
	}
	return &Handler{
		checkoutService: checkoutSvc,
		log:             baseLogger.With(observability.F("component", componentHTTPHandler)),
		tel:             tel,
	}
}

func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()

	// Wire each route with middlewares:
	// Trace → ObservabilityMiddleware (request logger) → HTTP metrics → Access log → Handler
	h.handle(r, http.MethodPost, routeIntentCreate, h.handleCreateIntent)
	h.handle(r, http.MethodPost, routeIntentWebhook, h.handleStripeWebhook)
	h.handle(r, http.MethodPost, routeCoinConfirmed, h.handleCrystalcoinConfirmed)
	h.handle(r, http.MethodGet, routeHealth, h.handleHealth)

	return r
}

func (h *Handler) handle(r *mux.Router, method, route string, handler http.HandlerFunc) {
	r.Handle(route, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// Store stable route template for low-cardinality labels
		ctx := contextWithRoute(req.Context(), route)
		req = req.WithContext(ctx)

		wrapped := h.withTrace(
			ObservabilityMiddleware(
				logctx.FromOr(ctx, h.log),
				func(r *http.Request) string {
					return r.Header.Get(headerRequestID)
				},
				h.tel,
			)(
				h.withAccessLog(http.HandlerFunc(handler)),
			),
		)
		wrapped.ServeHTTP(w, req)
	})).Methods(method)
}

type cartRequest struct {
	CartID string `json:"cartId"`
}

type intentResponse struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
}

func (h *Handler) handleCreateIntent(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	intent, err := h.checkoutService.CreateIntent(r.Context(), req.CartID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, intentResponse{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
	})
}

func (h *Handler) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	event, err := h.checkoutService.ParseWebhook(payload, r.Header.Get(headerStripeSig))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if _, err := h.checkoutService.HandleWebhookEvent(r.Context(), event); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *Handler) handleCrystalcoinConfirmed(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	confirmation, err := h.checkoutService.ConfirmCrystalcoin(r.Context(), req.CartID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, confirmation)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withAccessLog writes a single access log after the handler completes.
// It relies on the request-scoped logger already injected by ObservabilityMiddleware.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", routeFromContext(r.Context())),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// withTrace creates a server span for the request using OTel and W3C propagation.
func (h *Handler) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracer := otel.Tracer("storefront-payments.http")
		parentCtx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		template := routeFromContext(parentCtx)
		if template == "unknown" || template == "" {
			template = r.URL.Path
		}

		ctxWithSpan, span := tracer.Start(parentCtx,
			r.Method+" "+template,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", template),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctxWithSpan))
	})
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	var orderExists *domainCart.OrderExistsError
	switch {
	case errors.Is(err, domainCart.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.As(err, &orderExists):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, checkout.ErrInvalidSignature):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

type routeKey struct{}

// contextWithRoute stores the stable route template in the context so downstream
// metrics/logging can rely on low-cardinality values.
func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}
