package cart

import (
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("cart: not found")

// OrderExistsError signals that a cart already produced an order and must not
// be submitted again. It carries the existing order id for the caller.
type OrderExistsError struct {
	OrderID string
}

func (e *OrderExistsError) Error() string {
	return fmt.Sprintf("cart: order '%s' already exists", e.OrderID)
}

// Price carries gross and net amounts for one item or a cart total.
type Price struct {
	Gross float64
	Net   float64
}

// Item is a single cart line. Name falls back to the SKU when empty.
type Item struct {
	SKU      string
	Name     string
	Quantity int
	ImageURL string
	Price    Price
}

func (i Item) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.SKU
}

type Cart struct {
	Items []Item
	Total Price
}

// CustomerDetails are the optional raw customer fields captured with the cart.
type CustomerDetails struct {
	Identifier    string
	FirstName     string
	LastName      string
	Company       string
	StreetAddress string
	City          string
	ZipCode       string
}

// Wrapper pairs a cart with submission metadata. OrderID is set at most once,
// after the upstream order has been created.
type Wrapper struct {
	ID        string
	Cart      Cart
	Customer  *CustomerDetails
	OrderID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewWrapper(id string, c Cart, customer *CustomerDetails) *Wrapper {
	now := time.Now().UTC()
	return &Wrapper{
		ID:        id,
		Cart:      c,
		Customer:  customer,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (w *Wrapper) Clone() *Wrapper {
	if w == nil {
		return nil
	}
	clone := *w
	clone.Cart.Items = append([]Item(nil), w.Cart.Items...)
	if w.Customer != nil {
		customer := *w.Customer
		clone.Customer = &customer
	}
	return &clone
}
