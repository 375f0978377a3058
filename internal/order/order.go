package order

import "errors"

var (
	ErrNotFound          = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Order statuses. An order is inserted as pending and flipped to confirmed
// inside the same transaction once stock has been secured.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

type Order struct {
	ID                    int    `json:"orderId"`
	UserID                int    `json:"userId"`
	AddressID             int    `json:"addressId"`
	TotalAmount           int    `json:"totalAmount"`
	Status                string `json:"status"`
	PaymentMethod         string `json:"paymentMethod"`
	StripeSessionID       string `json:"-"`
	StripePaymentIntentID string `json:"-"`
	CreatedAt             string `json:"createdAt,omitempty"`
	UpdatedAt             string `json:"updatedAt,omitempty"`
}

// Item is an order line with the unit price frozen at purchase time.
type Item struct {
	ID          int    `json:"orderItemId"`
	OrderID     int    `json:"orderId"`
	ProductID   int    `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Quantity    int    `json:"quantity"`
	Price       int    `json:"price"`
}

type WithItems struct {
	Order
	Items []Item `json:"items"`
}
