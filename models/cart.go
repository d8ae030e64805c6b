package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one entry in a user's cart, either a single component
// or a saved build. UnitPrice and the contained-items snapshot are
// refreshed from the live catalog when the item is added, and frozen
// for real at order creation.
type CartItem struct {
	CartItemID     string              `json:"cart_item_id"`
	ProductID      string              `json:"product_id"`
	ItemType       LineItemType        `json:"item_type"`
	Name           string              `json:"name"`
	Quantity       int                 `json:"quantity"`
	UnitPrice      decimal.Decimal     `json:"unit_price"`
	ImageURL       string              `json:"image_url,omitempty"`
	ContainedItems []OrderItemSnapshot `json:"contained_items,omitempty"`
}

// Cart is a user's pending selection, stored in Redis keyed by user.
type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AddCartItemRequest adds a component or build to the cart.
type AddCartItemRequest struct {
	ProductID string       `json:"product_id" binding:"required"`
	ItemType  LineItemType `json:"item_type" binding:"required"`
	Quantity  int          `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest changes the quantity of an existing entry.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// CheckoutRequest turns the cart into an order.
type CheckoutRequest struct {
	PaymentMethod PaymentMethod `json:"payment_method" binding:"required"`
	UserAddress   string        `json:"user_address" binding:"required"`
	PhoneNumber   string        `json:"phone_number" binding:"required"`
	Email         string        `json:"email" binding:"required,email"`
}
