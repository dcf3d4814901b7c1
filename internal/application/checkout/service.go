package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cartfront/storefront-payments/internal/domain/cart"
	"github.com/cartfront/storefront-payments/internal/domain/order"
	domoutbox "github.com/cartfront/storefront-payments/internal/domain/outbox"
	"github.com/cartfront/storefront-payments/internal/observability"
	"github.com/cartfront/storefront-payments/internal/observability/logctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EventPaymentIntentSucceeded is the only provider event that triggers an
// order submission; every other event type is acknowledged as a no-op.
const EventPaymentIntentSucceeded = "payment_intent.succeeded"

const (
	componentCheckout   = "checkout_service"
	useCaseSubmitOrder  = "checkout.submit_order"
	useCaseCreateIntent = "checkout.create_intent"
	spanPrefix          = "UC."
	publishTimeout      = 300 * time.Millisecond
	taxName             = "VAT"
)

// Service is the order-submission adapter between the cart store, the payment
// gateway, and the upstream commerce API.
type Service struct {
	carts     cart.Repository
	pusher    OrderPusher
	gateway   PaymentGateway
	publisher domoutbox.Publisher
	currency  string
	tel       observability.Telemetry
	log       observability.Logger
}

func NewService(
	carts cart.Repository,
	pusher OrderPusher,
	gateway PaymentGateway,
	publisher domoutbox.Publisher,
	currency string,
	tel observability.Telemetry,
) *Service {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	return &Service{
		carts:     carts,
		pusher:    pusher,
		gateway:   gateway,
		publisher: publisher,
		currency:  currency,
		tel:       tel,
		log:       tel.Logger().With(observability.F("component", componentCheckout)),
	}
}

// CreateIntent resolves the cart and asks the payment gateway for an intent
// covering the cart's net total in minor units.
func (s *Service) CreateIntent(ctx context.Context, cartID string) (*Intent, error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCaseCreateIntent))

	w, err := s.carts.Find(ctx, cartID)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, IntentRequest{
		CartID:   w.ID,
		Amount:   MinorUnits(w.Cart.Total.Net),
		Currency: s.currency,
	})
	if err != nil {
		logger.Error("intent_create_failed",
			observability.F("cart_id", cartID),
			observability.F("error", err.Error()),
		)
		return nil, fmt.Errorf("checkout: create intent: %w", err)
	}

	logger.Info("intent_created",
		observability.F("cart_id", cartID),
		observability.F("intent_id", intent.ID),
	)
	return intent, nil
}

// ParseWebhook delegates signature verification and event decoding to the
// payment gateway.
func (s *Service) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	return s.gateway.ParseEvent(payload, signature)
}

// HandleWebhookEvent submits the order for a succeeded payment intent. Events
// of any other type are accepted without effect and return a nil confirmation.
func (s *Service) HandleWebhookEvent(ctx context.Context, evt *WebhookEvent) (*order.Confirmation, error) {
	logger := logctx.FromOr(ctx, s.log)

	if evt.Type != EventPaymentIntentSucceeded {
		logger.Debug("webhook_event_ignored",
			observability.F("event_id", evt.ID),
			observability.F("event_type", evt.Type),
		)
		return nil, nil
	}

	w, err := s.carts.Find(ctx, evt.CartID)
	if err != nil {
		return nil, err
	}

	payment := order.NewStripePayment(order.StripePayment{
		PaymentIntentID: evt.IntentID,
		PaymentMethod:   evt.PaymentMethod,
		Stripe:          "eventId:" + evt.ID,
		Metadata:        evt.ReceiptURL,
	})
	return s.SubmitOrder(ctx, w, BuildCustomer(w), payment)
}

// ConfirmCrystalcoin submits the order for the demo payment method. There is
// no verification behind it; the endpoint exists for demonstration only.
func (s *Service) ConfirmCrystalcoin(ctx context.Context, cartID string) (*order.Confirmation, error) {
	w, err := s.carts.Find(ctx, cartID)
	if err != nil {
		return nil, err
	}

	payment := order.NewCustomPayment(
		order.CustomProperty{Property: "payment_method", Value: "Crystallize Coin"},
		order.CustomProperty{Property: "amount", Value: strconv.FormatFloat(w.Cart.Total.Net, 'f', 5, 64)},
	)
	return s.SubmitOrder(ctx, w, BuildCustomer(w), payment)
}

// SubmitOrder pushes the cart as an order to the commerce API and links the
// created order back to the cart. Order creation happens-before the attach;
// the attach is not rolled back if the link fails afterwards.
func (s *Service) SubmitOrder(ctx context.Context, w *cart.Wrapper, customer order.Customer, payment order.Payment) (_ *order.Confirmation, err error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCaseSubmitOrder))

	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"SubmitOrder",
		attribute.String("use_case", useCaseSubmitOrder),
		attribute.String("cart.id", w.ID),
		attribute.String("payment.provider", string(payment.Provider)),
	)
	start := time.Now()
	outcome := "success"

	defer func() {
		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, outcome)
			} else {
				span.SetStatus(codes.Ok, outcome)
			}
			span.End()
		}
		if c := s.tel.Counter(observability.MUsecaseRequests); c != nil {
			c.Add(1,
				observability.L("use_case", useCaseSubmitOrder),
				observability.L("outcome", outcome),
			)
		}
		if h := s.tel.Histogram(observability.MUsecaseDuration); h != nil {
			h.Observe(time.Since(start).Seconds(),
				observability.L("use_case", useCaseSubmitOrder),
			)
		}
	}()

	if w.OrderID != "" {
		outcome = "duplicate"
		logger.Warn("order_already_exists",
			observability.F("cart_id", w.ID),
			observability.F("order_id", w.OrderID),
		)
		return nil, &cart.OrderExistsError{OrderID: w.OrderID}
	}

	confirmation, err := s.pusher.CreateOrder(ctx, s.buildSubmission(w, customer, payment), w.ID)
	if err != nil {
		outcome = "error"
		logger.Error("order_push_failed",
			observability.F("cart_id", w.ID),
			observability.F("error", err.Error()),
		)
		return nil, fmt.Errorf("checkout: push order: %w", err)
	}

	if err := s.carts.AttachOrderID(ctx, w.ID, confirmation.ID); err != nil {
		// The order exists upstream but could not be linked. Surface the
		// failure; there is no compensating delete on the commerce side.
		outcome = "attach_failed"
		logger.Error("order_attach_failed",
			observability.F("cart_id", w.ID),
			observability.F("order_id", confirmation.ID),
			observability.F("error", err.Error()),
		)
		return nil, fmt.Errorf("checkout: attach order id: %w", err)
	}
	w.OrderID = confirmation.ID

	s.publishSubmitted(ctx, logger, confirmation.ID, w.ID, payment.Provider)

	logger.Info("order_submitted",
		observability.F("cart_id", w.ID),
		observability.F("order_id", confirmation.ID),
		observability.F("provider", string(payment.Provider)),
	)
	return confirmation, nil
}

func (s *Service) publishSubmitted(ctx context.Context, logger observability.Logger, orderID, cartID string, provider order.Provider) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, order.NewSubmittedEvent(orderID, cartID, provider)); err != nil {
		logger.Warn("order_submitted_event_publish_failed",
			observability.F("order_id", orderID),
			observability.F("error", err.Error()),
		)
	}
}

func (s *Service) buildSubmission(w *cart.Wrapper, customer order.Customer, payment order.Payment) order.Submission {
	lines := make([]order.Line, 0, len(w.Cart.Items))
	for _, item := range w.Cart.Items {
		lines = append(lines, order.Line{
			SKU:      item.SKU,
			Name:     item.DisplayName(),
			Quantity: item.Quantity,
			ImageURL: item.ImageURL,
			Price: order.Price{
				Gross:    item.Price.Gross,
				Net:      item.Price.Net,
				Currency: s.currency,
				Tax:      order.Tax{Name: taxName, Percent: TaxPercent(item.Price)},
			},
		})
	}

	return order.Submission{
		Customer: customer,
		Cart:     lines,
		Total: order.Price{
			Gross:    w.Cart.Total.Gross,
			Net:      w.Cart.Total.Net,
			Currency: s.currency,
			Tax:      order.Tax{Name: taxName, Percent: TaxPercent(w.Cart.Total)},
		},
		Payment: []order.Payment{payment},
	}
}

// TaxPercent derives the display tax rate as (net/gross - 1) * 100. The
// ordering of net and gross is kept exactly as the upstream order format
// expects it. A zero gross yields zero instead of a non-finite value.
func TaxPercent(p cart.Price) float64 {
	if p.Gross == 0 {
		return 0
	}
	return (p.Net/p.Gross - 1) * 100
}

// MinorUnits converts a net amount to minor currency units. Precondition: the
// configured currency has two decimal places.
func MinorUnits(net float64) int64 {
	return int64(math.Round(net * 100))
}

// IsNotFound reports whether err means the cart does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, cart.ErrNotFound)
}
