package types

import (
	"fmt"
	"strings"
)

// ShippingAddress is stored as jsonb on orders.
type ShippingAddress struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
	Phone      *string `json:"phone,omitempty"`
}

// Normalize trims fields and defaults the country.
func (a *ShippingAddress) Normalize() {
	a.Line1 = strings.TrimSpace(a.Line1)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.TrimSpace(a.Country)
	if a.Country == "" {
		a.Country = "US"
	}
}

// Validate checks the required fields after normalization.
func (a ShippingAddress) Validate() error {
	if a.Line1 == "" {
		return fmt.Errorf("shipping address: missing line1")
	}
	if a.City == "" {
		return fmt.Errorf("shipping address: missing city")
	}
	if a.State == "" {
		return fmt.Errorf("shipping address: missing state")
	}
	if a.PostalCode == "" {
		return fmt.Errorf("shipping address: missing postal_code")
	}
	return nil
}
