package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusOpen OrderStatus = "open"
	OrderStatusPaid OrderStatus = "paid"
	OrderStatusVoid OrderStatus = "void"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(s))) {
	case OrderStatusOpen:
		return OrderStatusOpen, true
	case OrderStatusPaid:
		return OrderStatusPaid, true
	case OrderStatusVoid:
		return OrderStatusVoid, true
	}
	return "", false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusVoid
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodCredit PaymentMethod = "credit"
)

// DefaultPaymentMethod is what an unrecognised payment method settles as.
const DefaultPaymentMethod = PaymentMethodCash

// PaymentMethods lists every accepted method in report order.
var PaymentMethods = []PaymentMethod{PaymentMethodCash, PaymentMethodCard, PaymentMethodCredit}

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return PaymentMethodCash, true
	case "card":
		return PaymentMethodCard, true
	case "credit", "deferred":
		return PaymentMethodCredit, true
	}
	return "", false
}

// PaymentMethodOrDefault applies the lenient settlement policy: unknown
// methods are coerced to DefaultPaymentMethod instead of rejecting the
// payment. The second return value reports whether coercion happened.
func PaymentMethodOrDefault(s string) (PaymentMethod, bool) {
	if m, ok := ParsePaymentMethod(s); ok {
		return m, false
	}
	return DefaultPaymentMethod, true
}

type Order struct {
	ID            int64
	OrderNumber   int64
	TableNo       string
	CreatedAt     time.Time
	CreatedBy     string
	PaymentMethod *PaymentMethod
	TaxPct        decimal.Decimal
	Discount      int64
	Subtotal      int64
	TaxAmount     int64
	Total         int64
	Status        OrderStatus
	Note          string
	PaidBy        *string
	PaidAt        *time.Time
	VoidedBy      *string
	VoidedAt      *time.Time
	Items         []OrderItem
}

// OrderItem is a snapshot of a menu item at order time. Later catalog
// edits never reach it.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID *int64
	Name      string
	UnitPrice int64
	Quantity  int
	LineTotal int64
}

// OpenOrderInput is a captain's cart as handed over by the transport layer.
type OpenOrderInput struct {
	TableNo  string
	Operator string
	Items    []CartItem
	TaxPct   decimal.Decimal
	Discount int64
	Note     string
}
