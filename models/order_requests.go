package models

// OrderLineRequest selects one product for an order: a catalog
// component or a saved build.
type OrderLineRequest struct {
	ItemType  LineItemType `json:"item_type" binding:"required"`
	ProductID string       `json:"product_id" binding:"required"`
	Quantity  int          `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest creates an order directly from chosen products.
// Checkout builds the same request from the cart.
type CreateOrderRequest struct {
	LineItems     []OrderLineRequest `json:"line_items" binding:"required,min=1,dive"`
	PaymentMethod PaymentMethod      `json:"payment_method" binding:"required"`
	UserAddress   string             `json:"user_address" binding:"required"`
	PhoneNumber   string             `json:"phone_number" binding:"required"`
	Email         string             `json:"email" binding:"required,email"`
}

// CreateOrderResponse returns the new order id and, for gateway
// payments, the link the buyer must visit to approve the charge.
type CreateOrderResponse struct {
	OrderID      string `json:"order_id"`
	ApprovalLink string `json:"approval_link,omitempty"`
}

// ShipOrderRequest records the handoff to a carrier.
type ShipOrderRequest struct {
	Carrier        string `json:"carrier" binding:"required"`
	TrackingNumber string `json:"tracking_number" binding:"required"`
}

// UpdateShippingRequest corrects carrier or tracking details on an
// order that already shipped.
type UpdateShippingRequest struct {
	Carrier        string `json:"carrier" binding:"required"`
	TrackingNumber string `json:"tracking_number" binding:"required"`
}

// StatusOverrideRequest is the admin payload for a manual status move.
type StatusOverrideRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}
