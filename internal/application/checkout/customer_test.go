package checkout

import (
	"testing"

	"github.com/cartfront/storefront-payments/internal/domain/cart"
	"github.com/cartfront/storefront-payments/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCustomer_EmptyDetailsUsePlaceholders(t *testing.T) {
	got := BuildCustomer(&cart.Wrapper{ID: "cart-1"})

	assert.Empty(t, got.Identifier)
	assert.Equal(t, "William", got.FirstName)
	assert.Equal(t, "Wallace", got.LastName)
	assert.Equal(t, "Freedom Inc.", got.CompanyName)

	require.Len(t, got.Addresses, 2)
	assert.Equal(t, order.AddressBilling, got.Addresses[0].Kind)
	assert.Equal(t, order.AddressDelivery, got.Addresses[1].Kind)
	for _, addr := range got.Addresses {
		assert.Equal(t, "845 Market St", addr.Street)
		assert.Equal(t, "San Francisco", addr.City)
		assert.Equal(t, "USA", addr.Country)
		assert.Equal(t, "CA", addr.State)
		assert.Equal(t, "94103", addr.PostalCode)
	}
}

func TestBuildCustomer_PopulatedDetailsKeepValues(t *testing.T) {
	got := BuildCustomer(&cart.Wrapper{
		ID: "cart-1",
		Customer: &cart.CustomerDetails{
			Identifier:    "cust-7",
			FirstName:     "Ada",
			LastName:      "Lovelace",
			Company:       "Analytical Engines",
			StreetAddress: "12 Byron Rd",
			City:          "London",
			ZipCode:       "NW1",
		},
	})

	assert.Equal(t, "cust-7", got.Identifier)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "Lovelace", got.LastName)
	assert.Equal(t, "Analytical Engines", got.CompanyName)
	require.Len(t, got.Addresses, 2)
	for _, addr := range got.Addresses {
		assert.Equal(t, "12 Byron Rd", addr.Street)
		assert.Equal(t, "London", addr.City)
		assert.Equal(t, "NW1", addr.PostalCode)
	}
}

func TestBuildCustomer_NilWrapper(t *testing.T) {
	got := BuildCustomer(nil)
	assert.Equal(t, "William", got.FirstName)
	require.Len(t, got.Addresses, 2)
}

func TestBuildCustomer_IsPure(t *testing.T) {
	w := &cart.Wrapper{
		ID:       "cart-1",
		Customer: &cart.CustomerDetails{FirstName: "Ada"},
	}

	first := BuildCustomer(w)
	second := BuildCustomer(w)

	assert.Equal(t, first, second)
	assert.Equal(t, "Ada", w.Customer.FirstName, "input must not be mutated")
}
