package service

import (
	"time"

	"threadmart/internal/domain"
)

// Views are the plain, JSON-safe structures handed across the serialization
// boundary: string identifiers, ISO-8601 timestamps, no store-internal
// values. The consuming layer renders them directly.

// ProductView is the full product projection.
type ProductView struct {
	ID          string           `json:"id"`
	UniqueID    string           `json:"unique_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Images      []string         `json:"images"`
	Category    string           `json:"category"`
	Price       float64          `json:"price"`
	BasePrice   float64          `json:"base_price"`
	OfferPrice  float64          `json:"offer_price,omitempty"`
	TotalStock  int              `json:"total_stock"`
	Variants    []domain.Variant `json:"variants"`
	CreatedAt   string           `json:"created_at,omitempty"`
	UpdatedAt   string           `json:"updated_at,omitempty"`
}

// ProductSummary is the display projection joined onto cart lines.
type ProductSummary struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Images []string `json:"images"`
	Slug   string   `json:"slug"`
}

// CartItemView is one serialized cart line. Product is nil when the product
// no longer exists; the line itself is still returned.
type CartItemView struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     float64         `json:"price"`
	Variant   string          `json:"variant,omitempty"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Product   *ProductSummary `json:"product"`
}

// CartView is the full serialized cart returned by every cart operation.
type CartView struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Items      []CartItemView `json:"items"`
	TotalPrice float64        `json:"total_price"`
	CreatedAt  string         `json:"created_at,omitempty"`
	UpdatedAt  string         `json:"updated_at,omitempty"`
}

// OrderView is the serialized order snapshot.
type OrderView struct {
	ID           string              `json:"id"`
	UserID       string              `json:"user_id"`
	Items        []domain.OrderItem  `json:"items"`
	ShippingInfo domain.ShippingInfo `json:"shipping_info"`
	PaymentInfo  domain.PaymentInfo  `json:"payment_info"`
	Subtotal     float64             `json:"subtotal"`
	Shipping     float64             `json:"shipping"`
	Tax          float64             `json:"tax"`
	Total        float64             `json:"total"`
	Status       string              `json:"status"`
	CreatedAt    string              `json:"created_at,omitempty"`
	UpdatedAt    string              `json:"updated_at,omitempty"`
}

func isoTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func newProductView(p *domain.Product) *ProductView {
	variants := p.Variants
	if variants == nil {
		variants = []domain.Variant{}
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return &ProductView{
		ID:          p.ID.String(),
		UniqueID:    p.UniqueID,
		Title:       p.Title,
		Description: p.Description,
		Images:      images,
		Category:    p.Category,
		Price:       p.Price,
		BasePrice:   p.BasePrice,
		OfferPrice:  p.OfferPrice,
		TotalStock:  p.TotalStock,
		Variants:    variants,
		CreatedAt:   isoTime(p.CreatedAt),
		UpdatedAt:   isoTime(p.UpdatedAt),
	}
}

func newProductSummary(p *domain.Product) *ProductSummary {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return &ProductSummary{
		ID:     p.ID.String(),
		Title:  p.Title,
		Images: images,
		Slug:   p.UniqueID,
	}
}

func newOrderView(o *domain.Order) *OrderView {
	items := o.Items
	if items == nil {
		items = []domain.OrderItem{}
	}
	return &OrderView{
		ID:           o.ID.String(),
		UserID:       o.UserID,
		Items:        items,
		ShippingInfo: o.ShippingInfo,
		PaymentInfo:  o.PaymentInfo,
		Subtotal:     o.Subtotal,
		Shipping:     o.Shipping,
		Tax:          o.Tax,
		Total:        o.Total,
		Status:       o.Status,
		CreatedAt:    isoTime(o.CreatedAt),
		UpdatedAt:    isoTime(o.UpdatedAt),
	}
}
