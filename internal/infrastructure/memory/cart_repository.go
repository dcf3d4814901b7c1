package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/cartfront/storefront-payments/internal/domain/cart"
)

// CartRepository is an in-memory cart store. It owns its own locking and hands
// out clones, never the stored wrappers themselves.
type CartRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Wrapper
}

func NewCartRepository() *CartRepository {
	return &CartRepository{
		carts: make(map[string]*domain.Wrapper),
	}
}

func (r *CartRepository) Save(ctx context.Context, w *domain.Wrapper) error {
	_ = ctx
	if w == nil || w.ID == "" {
		return fmt.Errorf("cart repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[w.ID] = w.Clone()
	return nil
}

func (r *CartRepository) Find(ctx context.Context, id string) (*domain.Wrapper, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return w.Clone(), nil
}

// AttachOrderID links an order to the cart exactly once. A second attach for
// the same cart fails with the existing order id.
func (r *CartRepository) AttachOrderID(ctx context.Context, cartID, orderID string) error {
	_ = ctx
	if orderID == "" {
		return fmt.Errorf("cart repository: order id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.carts[cartID]
	if !ok {
		return domain.ErrNotFound
	}
	if w.OrderID != "" {
		return &domain.OrderExistsError{OrderID: w.OrderID}
	}

	w.OrderID = orderID
	return nil
}
