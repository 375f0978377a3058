package category

import "errors"

var ErrNotFound = errors.New("category not found")

type Category struct {
	ID          int     `json:"categoryId"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	CreatedAt   string  `json:"createdAt,omitempty"`
}
