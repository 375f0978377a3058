package cart

import "errors"

var (
	ErrNotFound     = errors.New("cart item not found")
	ErrBadQuantity  = errors.New("quantity must be a positive integer")
	ErrUserNotFound = errors.New("user not found")
)

// Cart is one-per-user and created lazily on first access.
type Cart struct {
	ID        int    `json:"cartId"`
	UserID    int    `json:"userId"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Item is a (product, quantity) line. Product fields are joined in at read
// time; the cart itself never snapshots prices or stock.
type Item struct {
	ID        int    `json:"itemId"`
	CartID    int    `json:"cartId"`
	ProductID int    `json:"productId"`
	Quantity  int    `json:"quantity"`
	CreatedAt string `json:"createdAt,omitempty"`

	ProductName  string  `json:"productName,omitempty"`
	ProductPrice int     `json:"productPrice,omitempty"`
	ProductStock int     `json:"productStock,omitempty"`
	ProductImage *string `json:"productImage,omitempty"`
}

// View is a cart plus its joined items; an empty cart yields zero items, not
// an error.
type View struct {
	Cart
	Items []Item `json:"items"`
}
