package domain

import "time"

type OrderEventType string

const (
	OrderEventOpened OrderEventType = "order.opened"
	OrderEventPaid   OrderEventType = "order.paid"
	OrderEventVoided OrderEventType = "order.voided"
)

type OrderEvent struct {
	EventID       string         `json:"eventId"`
	Type          OrderEventType `json:"type"`
	OrderID       int64          `json:"orderId"`
	OrderNumber   int64          `json:"orderNumber"`
	TableNo       string         `json:"tableNo"`
	Status        OrderStatus    `json:"status"`
	Total         int64          `json:"total"`
	PaymentMethod string         `json:"paymentMethod,omitempty"`
	Operator      string         `json:"operator"`
	OccurredAt    time.Time      `json:"occurredAt"`
}
