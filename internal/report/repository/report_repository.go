package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"tablepos/internal/domain"
	"tablepos/internal/errors"
)

// MySQLReportRepository serves the read-only report queries. Every query
// counts paid orders only and filters on createdAt in [from, to).
type MySQLReportRepository struct {
	db *sql.DB
}

func NewMySQLReportRepository(db *sql.DB) *MySQLReportRepository {
	return &MySQLReportRepository{db: db}
}

// FindPaidBetween returns paid orders created in [from, to) with their items,
// ordered by order number and item id.
func (r *MySQLReportRepository) FindPaidBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	query := `
		SELECT id, orderNumber, tableNo, createdAt, createdBy, paymentMethod, total, status
		FROM Orders
		WHERE status = ? AND createdAt >= ? AND createdAt < ?
		ORDER BY orderNumber`

	rows, err := r.db.QueryContext(ctx, query, domain.OrderStatusPaid, from.UTC(), to.UTC())
	if err != nil {
		return nil, errors.NewStorageError("querying paid orders", err)
	}
	defer rows.Close()

	var orders []domain.Order
	index := make(map[int64]int)
	for rows.Next() {
		var o domain.Order
		var method sql.NullString
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.TableNo, &o.CreatedAt, &o.CreatedBy, &method, &o.Total, &o.Status); err != nil {
			return nil, errors.NewStorageError("scanning paid order row", err)
		}
		if method.Valid {
			m := domain.PaymentMethod(method.String)
			o.PaymentMethod = &m
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterating paid order rows", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	if err := r.attachItems(ctx, orders, index); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *MySQLReportRepository) attachItems(ctx context.Context, orders []domain.Order, index map[int64]int) error {
	placeholders := make([]string, len(orders))
	args := make([]interface{}, len(orders))
	for i, o := range orders {
		placeholders[i] = "?"
		args[i] = o.ID
	}

	query := `
		SELECT id, orderId, productId, name, unitPrice, quantity, lineTotal
		FROM OrderItems
		WHERE orderId IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY orderId, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return errors.NewStorageError("querying report items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity, &it.LineTotal); err != nil {
			return errors.NewStorageError("scanning report item row", err)
		}
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}

	if err := rows.Err(); err != nil {
		return errors.NewStorageError("iterating report item rows", err)
	}

	return nil
}

// SumPaidBetween returns the count and total of paid orders created in [from, to).
func (r *MySQLReportRepository) SumPaidBetween(ctx context.Context, from, to time.Time) (int, int64, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total), 0)
		FROM Orders
		WHERE status = ? AND createdAt >= ? AND createdAt < ?`

	var count int
	var total int64
	err := r.db.QueryRowContext(ctx, query, domain.OrderStatusPaid, from.UTC(), to.UTC()).Scan(&count, &total)
	if err != nil {
		return 0, 0, errors.NewStorageError("summing paid orders", err)
	}

	return count, total, nil
}

// SumPaidByOperator groups paid orders by the operator who opened them.
func (r *MySQLReportRepository) SumPaidByOperator(ctx context.Context) ([]domain.OperatorSummary, error) {
	query := `
		SELECT createdBy, COALESCE(SUM(total), 0), COUNT(*)
		FROM Orders
		WHERE status = ?
		GROUP BY createdBy
		ORDER BY SUM(total) DESC, createdBy`

	rows, err := r.db.QueryContext(ctx, query, domain.OrderStatusPaid)
	if err != nil {
		return nil, errors.NewStorageError("querying operator totals", err)
	}
	defer rows.Close()

	summaries := []domain.OperatorSummary{}
	for rows.Next() {
		var s domain.OperatorSummary
		if err := rows.Scan(&s.Operator, &s.TotalSales, &s.OrderCount); err != nil {
			return nil, errors.NewStorageError("scanning operator row", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterating operator rows", err)
	}

	return summaries, nil
}
