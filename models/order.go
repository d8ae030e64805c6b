package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfillment half of an order's dual status.
type OrderStatus string

const (
	OrderPendingPayment   OrderStatus = "PENDING_PAYMENT"
	OrderRejectedSlip     OrderStatus = "REJECTED_SLIP"
	OrderProcessing       OrderStatus = "PROCESSING"
	OrderShipped          OrderStatus = "SHIPPED"
	OrderDeliveryFailed   OrderStatus = "DELIVERY_FAILED"
	OrderReturnedToSender OrderStatus = "RETURNED_TO_SENDER"
	OrderCompleted        OrderStatus = "COMPLETED"
	OrderCancelled        OrderStatus = "CANCELLED"
	OrderRefundRequested  OrderStatus = "REFUND_REQUESTED"
	OrderRefundRejected   OrderStatus = "REFUND_REJECTED"
	OrderRefunded         OrderStatus = "REFUNDED"
)

// PaymentStatus is the payment half, orthogonal to OrderStatus.
type PaymentStatus string

const (
	PaymentPending         PaymentStatus = "PENDING"
	PaymentPendingApproval PaymentStatus = "PENDING_APPROVAL"
	PaymentCompleted       PaymentStatus = "COMPLETED"
	PaymentFailed          PaymentStatus = "FAILED"
	PaymentRefunded        PaymentStatus = "REFUNDED"
	PaymentRejected        PaymentStatus = "REJECTED"
)

// PaymentMethod selects how an order is paid.
type PaymentMethod string

const (
	MethodPaypal       PaymentMethod = "PAYPAL"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// LineItemType discriminates order line items.
type LineItemType string

const (
	LineItemComponent LineItemType = "COMPONENT"
	LineItemBuild     LineItemType = "BUILD"
)

// OrderItemSnapshot captures one constituent component of a build
// line as it was at order-creation time. Immutable afterwards, even
// if the catalog changes.
type OrderItemSnapshot struct {
	ComponentID string          `json:"component_id"`
	Name        string          `json:"name"`
	Mpn         string          `json:"mpn"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"image_url"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// OrderLineItem is one priced entry on an order: a single catalog
// component, or a whole build with its parts snapshotted. Prices are
// snapshots and are never recomputed from live inventory.
type OrderLineItem struct {
	ItemType       LineItemType        `json:"item_type"`
	Name           string              `json:"name"`
	Quantity       int                 `json:"quantity"`
	UnitPrice      decimal.Decimal     `json:"unit_price"`
	ComponentID    string              `json:"component_id,omitempty"`
	Mpn            string              `json:"mpn,omitempty"`
	BuildID        string              `json:"build_id,omitempty"`
	ContainedItems []OrderItemSnapshot `json:"contained_items,omitempty"`
}

// OrderLineItems persists as a jsonb array.
type OrderLineItems []OrderLineItem

func (l OrderLineItems) Value() (driver.Value, error) {
	if l == nil {
		l = OrderLineItems{}
	}
	return json.Marshal(l)
}

func (l *OrderLineItems) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// PaymentDetails records how an order was (or will be) paid. The
// gateway payment id, the uploaded slip URL and the refund id live in
// distinct fields so one phase never clobbers another.
type PaymentDetails struct {
	Method               PaymentMethod `json:"method"`
	GatewayTransactionID string        `json:"gateway_transaction_id,omitempty"`
	GatewayCaptureID     string        `json:"gateway_capture_id,omitempty"`
	SlipURL              string        `json:"slip_url,omitempty"`
	RefundID             string        `json:"refund_id,omitempty"`
	PayerID              string        `json:"payer_id,omitempty"`
	PayerEmail           string        `json:"payer_email,omitempty"`
	ProviderStatus       string        `json:"provider_status,omitempty"`
}

func (d PaymentDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *PaymentDetails) Scan(value interface{}) error {
	return scanJSON(value, d)
}

// ShippingDetails records carrier, tracking number and ship time.
type ShippingDetails struct {
	Carrier        string    `json:"carrier"`
	TrackingNumber string    `json:"tracking_number"`
	ShippedAt      time.Time `json:"shipped_at"`
}

func (d ShippingDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *ShippingDetails) Scan(value interface{}) error {
	return scanJSON(value, d)
}

// Order is one customer order moving through the lifecycle engine.
type Order struct {
	ID            string           `json:"id" gorm:"primaryKey"`
	UserID        string           `json:"user_id" gorm:"index;not null"`
	UserAddress   string           `json:"user_address"`
	PhoneNumber   string           `json:"phone_number"`
	Email         string           `json:"email"`
	LineItems     OrderLineItems   `json:"line_items" gorm:"type:jsonb"`
	TotalAmount   decimal.Decimal  `json:"total_amount" gorm:"type:numeric(12,2)"`
	TaxAmount     decimal.Decimal  `json:"tax_amount" gorm:"type:numeric(12,2)"`
	Currency      string           `json:"currency" gorm:"type:varchar(10)"`
	OrderStatus   OrderStatus      `json:"order_status" gorm:"type:varchar(30);index"`
	PaymentStatus PaymentStatus    `json:"payment_status" gorm:"type:varchar(30);index"`
	Payment       *PaymentDetails  `json:"payment,omitempty" gorm:"type:jsonb"`
	Shipping      *ShippingDetails `json:"shipping,omitempty" gorm:"type:jsonb"`
	CreatedAt     time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported jsonb source type: %T", value)
	}
}
