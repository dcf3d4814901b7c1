package order

import "time"

// SubmittedEvent is emitted after an order was created upstream and linked to
// its cart. Handled by background workers (e.g. notifications).
type SubmittedEvent struct {
	OrderID    string
	CartID     string
	Provider   Provider
	OccurredAt time.Time
}

func (SubmittedEvent) EventName() string { return "order.submitted" }

func NewSubmittedEvent(orderID, cartID string, provider Provider) SubmittedEvent {
	return SubmittedEvent{
		OrderID:    orderID,
		CartID:     cartID,
		Provider:   provider,
		OccurredAt: time.Now().UTC(),
	}
}
