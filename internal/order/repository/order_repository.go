package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tablepos/internal/domain"
	"tablepos/internal/errors"
)

const orderColumns = `
	id, orderNumber, tableNo, createdAt, createdBy, paymentMethod, taxPct,
	discount, subtotal, taxAmount, total, status, note,
	paidBy, paidAt, voidedBy, voidedAt`

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

// NextOrderNumber allocates max(last issued, highest stored, baseline) + 1.
// The sequence row stays locked until tx ends, so concurrent creators are
// serialized on it and a rolled back transaction gives its number back.
func (r *MySQLOrderRepository) NextOrderNumber(ctx context.Context, tx *sql.Tx, baseline int64) (int64, error) {
	var lastValue int64
	err := tx.QueryRowContext(ctx,
		`SELECT lastValue FROM OrderSequence WHERE name = 'orders' FOR UPDATE`,
	).Scan(&lastValue)
	if err == sql.ErrNoRows {
		return 0, errors.NewStorageError("allocating order number", fmt.Errorf("order sequence row is missing"))
	}
	if err != nil {
		return 0, errors.NewStorageError("locking order sequence", err)
	}

	var maxStored int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(orderNumber), 0) FROM Orders FOR SHARE`,
	).Scan(&maxStored)
	if err != nil {
		return 0, errors.NewStorageError("reading highest order number", err)
	}

	next := max(lastValue, maxStored, baseline) + 1

	if _, err := tx.ExecContext(ctx,
		`UPDATE OrderSequence SET lastValue = ? WHERE name = 'orders'`, next,
	); err != nil {
		return 0, errors.NewStorageError("advancing order sequence", err)
	}

	return next, nil
}

func (r *MySQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) (int64, error) {
	query := `
		INSERT INTO Orders (orderNumber, tableNo, createdAt, createdBy, taxPct,
		                    discount, subtotal, taxAmount, total, status, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		order.OrderNumber, order.TableNo, order.CreatedAt, order.CreatedBy, order.TaxPct,
		order.Discount, order.Subtotal, order.TaxAmount, order.Total, order.Status, order.Note,
	)
	if err != nil {
		return 0, errors.NewStorageError("inserting order", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, errors.NewStorageError("getting last insert id", err)
	}

	return lastInsertID, nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE id = ?`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, errors.NewStorageError("querying order by id", err)
	}

	return order, nil
}

// ListByStatus returns orders in status, newest order number first.
func (r *MySQLOrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus, limit int) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM Orders
		WHERE status = ?
		ORDER BY orderNumber DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, errors.NewStorageError("querying orders by status", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, errors.NewStorageError("scanning order row", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterating order rows", err)
	}

	return orders, nil
}

// UpdateStatusIfOpen applies change only while the order is still open. It
// reports false when no row matched, i.e. the order is missing or another
// caller already moved it.
func (r *MySQLOrderRepository) UpdateStatusIfOpen(ctx context.Context, id int64, change domain.StatusChange) (bool, error) {
	var query string
	var args []interface{}

	switch change.To {
	case domain.OrderStatusPaid:
		query = `
			UPDATE Orders
			SET status = ?, paymentMethod = ?, paidBy = ?, paidAt = ?
			WHERE id = ? AND status = ?`
		args = []interface{}{change.To, change.PaymentMethod, change.Operator, change.At, id, domain.OrderStatusOpen}
	case domain.OrderStatusVoid:
		query = `
			UPDATE Orders
			SET status = ?, voidedBy = ?, voidedAt = ?
			WHERE id = ? AND status = ?`
		args = []interface{}{change.To, change.Operator, change.At, id, domain.OrderStatusOpen}
	default:
		return false, errors.NewInvalidTransitionError(string(domain.OrderStatusOpen), string(change.To))
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, errors.NewStorageError("updating order status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewStorageError("getting rows affected", err)
	}

	return rowsAffected == 1, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var paymentMethod sql.NullString

	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.TableNo, &order.CreatedAt, &order.CreatedBy,
		&paymentMethod, &order.TaxPct, &order.Discount, &order.Subtotal, &order.TaxAmount,
		&order.Total, &order.Status, &order.Note,
		&order.PaidBy, &order.PaidAt, &order.VoidedBy, &order.VoidedAt,
	)
	if err != nil {
		return nil, err
	}

	if paymentMethod.Valid {
		m := domain.PaymentMethod(paymentMethod.String)
		order.PaymentMethod = &m
	}

	return &order, nil
}
