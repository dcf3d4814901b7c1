package worker

import (
	"context"

	domorder "github.com/cartfront/storefront-payments/internal/domain/order"
	domoutbox "github.com/cartfront/storefront-payments/internal/domain/outbox"
	"github.com/cartfront/storefront-payments/internal/observability"
	"github.com/cartfront/storefront-payments/internal/observability/logctx"
)

// Worker consumes order.submitted events and records confirmation
// notifications. A real deployment would hand these to a mail/notification
// system; here the notification is a structured log plus a counter.
type Worker struct {
	subscriber domoutbox.Subscriber
	tel        observability.Telemetry
	log        observability.Logger
}

func New(subscriber domoutbox.Subscriber, tel observability.Telemetry) *Worker {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	return &Worker{
		subscriber: subscriber,
		tel:        tel,
		log:        tel.Logger().With(observability.F("component", "notification_worker")),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil {
		return
	}
	w.subscriber.Subscribe(domorder.SubmittedEvent{}.EventName(), w.handleOrderSubmitted)
}

func (w *Worker) handleOrderSubmitted(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domorder.SubmittedEvent)
	if !ok {
		return nil
	}

	if counter := w.tel.Counter(observability.MOrdersSubmitted); counter != nil {
		counter.Add(1, observability.L("provider", string(evt.Provider)))
	}

	logctx.FromOr(ctx, w.log).Info("order_confirmation_notified",
		observability.F("order_id", evt.OrderID),
		observability.F("cart_id", evt.CartID),
		observability.F("provider", string(evt.Provider)),
	)
	return nil
}
