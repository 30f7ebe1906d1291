package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order status values. Orders are created as pending; transitions are an
// administrative concern handled outside the placement path.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// ValidOrderStatuses returns the set of valid order statuses.
func ValidOrderStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// IsValidOrderStatus checks whether the given status is a known order status.
func IsValidOrderStatus(status string) bool {
	for _, s := range ValidOrderStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// OrderItem is a cart line copied verbatim into an order at checkout.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Variant   string  `json:"variant,omitempty"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
}

// ShippingInfo is the delivery address captured at checkout.
type ShippingInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
}

// PaymentInfo is opaque to the core; it is snapshotted and stored with the
// order without interpretation.
type PaymentInfo struct {
	CardNumber string `json:"card_number"`
	CardName   string `json:"card_name"`
	ExpiryDate string `json:"expiry_date"`
	CVV        string `json:"cvv"`
}

// Order is an immutable snapshot of a cart taken at checkout time.
type Order struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	UserID       string       `json:"user_id" db:"user_id"`
	Items        []OrderItem  `json:"items" db:"items"`
	ShippingInfo ShippingInfo `json:"shipping_info" db:"shipping_info"`
	PaymentInfo  PaymentInfo  `json:"payment_info" db:"payment_info"`
	Subtotal     float64      `json:"subtotal" db:"subtotal"`
	Shipping     float64      `json:"shipping" db:"shipping"`
	Tax          float64      `json:"tax" db:"tax"`
	Total        float64      `json:"total" db:"total"`
	Status       string       `json:"status" db:"status"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}
