package product

import "errors"

var ErrNotFound = errors.New("product not found")

// Product maps to the `products` table. Prices are integer yen; the payment
// layer converts to minor currency units itself.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int     `json:"price"`
	Stock       int     `json:"stock"`
	CategoryID  *int    `json:"categoryId,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	IsActive    bool    `json:"isActive"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// Filters narrows List results. Zero values mean "no constraint".
type Filters struct {
	CategoryID *int
	Search     string
	MinPrice   *int
	MaxPrice   *int
	ActiveOnly bool
	Page       int
	Limit      int
}
