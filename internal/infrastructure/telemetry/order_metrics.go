package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OrderMetrics holds the business counters updated by the order use cases.
type OrderMetrics struct {
	opened  metric.Int64Counter
	settled metric.Int64Counter
	sales   metric.Int64Counter
}

func NewOrderMetrics(meter metric.Meter) (*OrderMetrics, error) {
	opened, err := meter.Int64Counter("orders_opened_total",
		metric.WithDescription("Orders opened by captains"))
	if err != nil {
		return nil, err
	}

	settled, err := meter.Int64Counter("orders_settled_total",
		metric.WithDescription("Orders moved to a terminal status"))
	if err != nil {
		return nil, err
	}

	sales, err := meter.Int64Counter("sales_amount_total",
		metric.WithDescription("Total of paid orders in currency units"))
	if err != nil {
		return nil, err
	}

	return &OrderMetrics{opened: opened, settled: settled, sales: sales}, nil
}

func (m *OrderMetrics) OrderOpened(ctx context.Context) {
	m.opened.Add(ctx, 1)
}

// OrderSettled counts a paid or voided order; paymentMethod is empty for voids.
func (m *OrderMetrics) OrderSettled(ctx context.Context, status, paymentMethod string, total int64) {
	attrs := metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("payment_method", paymentMethod),
	)
	m.settled.Add(ctx, 1, attrs)
	if status == "paid" {
		m.sales.Add(ctx, total, metric.WithAttributes(attribute.String("payment_method", paymentMethod)))
	}
}
