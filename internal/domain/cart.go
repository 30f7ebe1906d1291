package domain

import "time"

// CartItem is one line of a cart. Price is the line total (unit price times
// quantity), not the unit price. Line identity for merge purposes is the
// (ProductID, Color, Size) triple.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Variant   string  `json:"variant,omitempty"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
}

// Cart is the per-user shopping cart, persisted as a single document.
// Version backs the optimistic-concurrency check on writes.
type Cart struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"total_price"`
	Version    int        `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// FindLineIndex returns the index of the line matching the identity triple,
// or -1 if no such line exists.
func (c *Cart) FindLineIndex(productID, color, size string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].Color == color && c.Items[i].Size == size {
			return i
		}
	}
	return -1
}

// SumLinePrices adds up every line's stored price. The cart engine prefers
// this derived sum over any previously stored total.
func (c *Cart) SumLinePrices() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price
	}
	return RoundCents(total)
}
