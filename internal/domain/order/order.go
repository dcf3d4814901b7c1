// Package order holds the derived order-submission payload pushed to the
// upstream commerce API. Nothing in here is persisted locally.
package order

import "time"

type AddressKind string

const (
	AddressBilling  AddressKind = "billing"
	AddressDelivery AddressKind = "delivery"
)

type Address struct {
	Kind       AddressKind `json:"type"`
	Street     string      `json:"street"`
	City       string      `json:"city"`
	Country    string      `json:"country"`
	State      string      `json:"state"`
	PostalCode string      `json:"postalCode"`
}

type Customer struct {
	Identifier  string    `json:"identifier"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	CompanyName string    `json:"companyName"`
	Addresses   []Address `json:"addresses"`
}

type Tax struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

type Price struct {
	Gross    float64 `json:"gross"`
	Net      float64 `json:"net"`
	Currency string  `json:"currency"`
	Tax      Tax     `json:"tax"`
}

type Line struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	ImageURL string `json:"imageUrl"`
	Price    Price  `json:"price"`
}

type Provider string

const (
	ProviderStripe Provider = "stripe"
	ProviderCustom Provider = "custom"
)

// Payment is a tagged variant: exactly one of the provider payloads is set,
// matching the Provider discriminator.
type Payment struct {
	Provider Provider       `json:"provider"`
	Stripe   *StripePayment `json:"stripe,omitempty"`
	Custom   *CustomPayment `json:"custom,omitempty"`
}

type StripePayment struct {
	PaymentIntentID string `json:"paymentIntentId"`
	PaymentMethod   string `json:"paymentMethod"`
	Stripe          string `json:"stripe"`
	Metadata        string `json:"metadata"`
}

type CustomProperty struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

type CustomPayment struct {
	Properties []CustomProperty `json:"properties"`
}

func NewStripePayment(p StripePayment) Payment {
	return Payment{Provider: ProviderStripe, Stripe: &p}
}

func NewCustomPayment(properties ...CustomProperty) Payment {
	return Payment{Provider: ProviderCustom, Custom: &CustomPayment{Properties: properties}}
}

// Submission is the full order-creation request sent upstream.
type Submission struct {
	Customer Customer  `json:"customer"`
	Cart     []Line    `json:"cart"`
	Total    Price     `json:"total"`
	Payment  []Payment `json:"payment"`
}

// Confirmation is the upstream acknowledgment of a created order.
type Confirmation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
