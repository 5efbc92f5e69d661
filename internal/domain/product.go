package domain

import "time"

// ProductFields are the writable columns of a product.
type ProductFields struct {
	Name             string  `json:"name"`
	Description      Text    `json:"description"`
	ShortDescription Text    `json:"short_description"`
	Price            float64 `json:"price"`
	ImageURL         Text    `json:"image_url"`
	Category         Text    `json:"category"`
	Stock            int     `json:"stock"`
	SKU              Text    `json:"sku"`
	IsFeatured       bool    `json:"is_featured"`
}

// Product represents a product in the catalog
type Product struct {
	ID int64 `json:"id"`
	ProductFields
	CreatedAt time.Time `json:"created_at"`
}

func (p Product) Key() int64 { return p.ID }

// Images returns the stored image URLs (at most one).
func (p Product) Images() []string {
	if p.ImageURL == "" {
		return nil
	}
	return []string{string(p.ImageURL)}
}
