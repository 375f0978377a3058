package address

import "errors"

var ErrNotFound = errors.New("address not found")

// Address is a user's shipping address. Orders keep a reference to the
// address used at purchase time.
type Address struct {
	ID          int     `json:"addressId"`
	UserID      int     `json:"userId"`
	FullName    string  `json:"fullName"`
	PostalCode  string  `json:"postalCode"`
	Prefecture  string  `json:"prefecture"`
	City        string  `json:"city"`
	AddressLine string  `json:"addressLine"`
	Building    *string `json:"building,omitempty"`
	PhoneNumber string  `json:"phoneNumber"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}
