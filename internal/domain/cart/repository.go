package cart

import "context"

type Repository interface {
	Find(ctx context.Context, id string) (*Wrapper, error)
	Save(ctx context.Context, w *Wrapper) error
	// AttachOrderID links a created order to the cart. It fails with
	// *OrderExistsError when an order id is already attached.
	AttachOrderID(ctx context.Context, cartID, orderID string) error
}
