package models

import "time"

// OrderEvent is the lifecycle notification published to Kafka whenever
// an order changes status. Consumers (mail, analytics) are external;
// publishing is best effort and never blocks the state change.
type OrderEvent struct {
	OrderID       string        `json:"order_id"`
	UserID        string        `json:"user_id"`
	EventType     string        `json:"event_type"`
	OrderStatus   OrderStatus   `json:"order_status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	OccurredAt    time.Time     `json:"occurred_at"`
}
