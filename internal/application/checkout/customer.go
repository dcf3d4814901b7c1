package checkout

import (
	"github.com/cartfront/storefront-payments/internal/domain/cart"
	"github.com/cartfront/storefront-payments/internal/domain/order"
)

// Demo placeholder customer used when the cart carries no customer details.
// Deliberate demonstration behavior, not a validation gate.
const (
	placeholderFirstName = "William"
	placeholderLastName  = "Wallace"
	placeholderCompany   = "Freedom Inc."
	placeholderStreet    = "845 Market St"
	placeholderCity      = "San Francisco"
	placeholderZip       = "94103"
	placeholderCountry   = "USA"
	placeholderState     = "CA"
)

// BuildCustomer maps the cart's optional customer details to the order
// customer schema. Missing fields resolve to fixed placeholders; both the
// billing and delivery address are populated from the same source fields.
// Pure and total over its input.
func BuildCustomer(w *cart.Wrapper) order.Customer {
	var details cart.CustomerDetails
	if w != nil && w.Customer != nil {
		details = *w.Customer
	}

	address := order.Address{
		Street:     fallback(details.StreetAddress, placeholderStreet),
		City:       fallback(details.City, placeholderCity),
		Country:    placeholderCountry,
		State:      placeholderState,
		PostalCode: fallback(details.ZipCode, placeholderZip),
	}

	billing := address
	billing.Kind = order.AddressBilling
	delivery := address
	delivery.Kind = order.AddressDelivery

	return order.Customer{
		Identifier:  details.Identifier,
		FirstName:   fallback(details.FirstName, placeholderFirstName),
		LastName:    fallback(details.LastName, placeholderLastName),
		CompanyName: fallback(details.Company, placeholderCompany),
		Addresses:   []order.Address{billing, delivery},
	}
}

func fallback(value, def string) string {
	if value != "" {
		return value
	}
	return def
}
