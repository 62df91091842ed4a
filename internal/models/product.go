package models

import "time"

// Product mirrors the remote service's product shape.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int      `json:"price"` // cents
	Condition   string   `json:"condition"`
	Images      []string `json:"images"`
	Location    string   `json:"location,omitempty"`
	IsBidding   bool     `json:"isBidding"`
	IsSold      bool     `json:"isSold"`
	IsFeatured  bool     `json:"isFeatured"`
	UserID      string   `json:"userId"`
	CategoryID  string   `json:"categoryId"`
	CreatedAt   int64    `json:"createdAt"`
}

// CreatedAtTime returns CreatedAt as time.Time.
func (p *Product) CreatedAtTime() time.Time {
	return time.UnixMilli(p.CreatedAt)
}

// Category mirrors the remote service's category shape.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// DefaultCategories is the static category list served by the relay when the
// remote service is not consulted.
func DefaultCategories() []Category {
	return []Category{
		{ID: "books", Name: "Books", Icon: "book"},
		{ID: "electronics", Name: "Electronics", Icon: "laptop"},
		{ID: "furniture", Name: "Furniture", Icon: "chair"},
		{ID: "clothing", Name: "Clothing", Icon: "clothing"},
		{ID: "stationery", Name: "Stationery", Icon: "edit"},
		{ID: "gaming", Name: "Gaming", Icon: "gamepad"},
		{ID: "more", Name: "More", Icon: "more"},
	}
}
