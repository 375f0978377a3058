package review

import "errors"

var (
	ErrNotFound      = errors.New("review not found")
	ErrBadRating     = errors.New("rating must be between 1 and 5")
	ErrAlreadyExists = errors.New("user already reviewed this product")
)

type Review struct {
	ID        int     `json:"reviewId"`
	ProductID int     `json:"productId"`
	UserID    int     `json:"userId"`
	Rating    int     `json:"rating"`
	Comment   *string `json:"comment,omitempty"`
	CreatedAt string  `json:"createdAt,omitempty"`
	UpdatedAt string  `json:"updatedAt,omitempty"`

	DisplayName string `json:"displayName,omitempty"`
}

// Summary is a product's review list plus its aggregate rating.
type Summary struct {
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"averageRating"`
	ReviewCount   int      `json:"reviewCount"`
}
