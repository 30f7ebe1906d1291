package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog product. The variant matrix is stored as a
// nested document on the product row; variants have no lifecycle of their own
// and are always written as a whole list through the merge-and-validate path.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UniqueID    string    `json:"unique_id" db:"unique_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Images      []string  `json:"images" db:"images"`
	Category    string    `json:"category" db:"category"`
	Price       float64   `json:"price" db:"price"`
	BasePrice   float64   `json:"base_price" db:"base_price"`
	OfferPrice  float64   `json:"offer_price" db:"offer_price"`
	TotalStock  int       `json:"total_stock" db:"total_stock"`
	Variants    []Variant `json:"variants" db:"variants"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// UnitPrice returns the effective selling price: the offer price when one is
// set, otherwise the regular price.
func (p *Product) UnitPrice() float64 {
	if p.OfferPrice > 0 {
		return p.OfferPrice
	}
	return p.Price
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
