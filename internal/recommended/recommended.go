package recommended

// Sources attached to each recommendation so the frontend can label the rail.
const (
	SourceAffinity = "affinity"
	SourcePopular  = "popular"
)

// Item is a product surfaced on the recommendation rail.
type Item struct {
	ProductID  int     `json:"productId"`
	Name       string  `json:"name"`
	Price      int     `json:"price"`
	ImageURL   *string `json:"imageUrl,omitempty"`
	CategoryID *int    `json:"categoryId,omitempty"`
	Source     string  `json:"source"`
}
