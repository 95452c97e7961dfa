package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"tablepos/internal/domain"
)

type CreateOrderItemRequest struct {
	ProductID *int64 `json:"productId,omitempty"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	TableNo  string                   `json:"tableNo"`
	Items    []CreateOrderItemRequest `json:"items"`
	TaxPct   decimal.Decimal          `json:"taxPct"`
	Discount int64                    `json:"discount"`
	Note     string                   `json:"note"`
}

type PayOrderRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

type ChangeStatusRequest struct {
	Status        string `json:"status"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
}

type OrderItemResponse struct {
	ID        int64  `json:"id"`
	ProductID *int64 `json:"productId,omitempty"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal int64  `json:"lineTotal"`
}

type OrderResponse struct {
	ID            int64               `json:"id"`
	OrderNumber   int64               `json:"orderNumber"`
	TableNo       string              `json:"tableNo"`
	Status        string              `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
	CreatedBy     string              `json:"createdBy"`
	PaymentMethod *string             `json:"paymentMethod"`
	TaxPct        decimal.Decimal     `json:"taxPct"`
	Discount      int64               `json:"discount"`
	Subtotal      int64               `json:"subtotal"`
	TaxAmount     int64               `json:"taxAmount"`
	Total         int64               `json:"total"`
	Note          string              `json:"note"`
	PaidBy        *string             `json:"paidBy,omitempty"`
	PaidAt        *time.Time          `json:"paidAt,omitempty"`
	VoidedBy      *string             `json:"voidedBy,omitempty"`
	VoidedAt      *time.Time          `json:"voidedAt,omitempty"`
	Items         []OrderItemResponse `json:"items"`
}

type OrderEnvelope struct {
	TraceID string        `json:"traceId"`
	Order   OrderResponse `json:"order"`
}

type OrderListEnvelope struct {
	TraceID string          `json:"traceId"`
	Orders  []OrderResponse `json:"orders"`
}

func (r CreateOrderRequest) ToInput(operator string) domain.OpenOrderInput {
	items := make([]domain.CartItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = domain.CartItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		}
	}
	return domain.OpenOrderInput{
		TableNo:  r.TableNo,
		Operator: operator,
		Items:    items,
		TaxPct:   r.TaxPct,
		Discount: r.Discount,
		Note:     r.Note,
	}
}

func NewOrderResponse(o domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal,
		}
	}

	var method *string
	if o.PaymentMethod != nil {
		m := string(*o.PaymentMethod)
		method = &m
	}

	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		TableNo:       o.TableNo,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
		CreatedBy:     o.CreatedBy,
		PaymentMethod: method,
		TaxPct:        o.TaxPct,
		Discount:      o.Discount,
		Subtotal:      o.Subtotal,
		TaxAmount:     o.TaxAmount,
		Total:         o.Total,
		Note:          o.Note,
		PaidBy:        o.PaidBy,
		PaidAt:        o.PaidAt,
		VoidedBy:      o.VoidedBy,
		VoidedAt:      o.VoidedAt,
		Items:         items,
	}
}

func NewOrderResponses(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = NewOrderResponse(o)
	}
	return out
}
