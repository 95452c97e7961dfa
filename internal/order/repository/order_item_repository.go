package repository

import (
	"context"
	"database/sql"
	"strings"

	"tablepos/internal/domain"
	"tablepos/internal/errors"
)

type MySQLOrderItemRepository struct {
	db *sql.DB
}

func NewMySQLOrderItemRepository(db *sql.DB) *MySQLOrderItemRepository {
	return &MySQLOrderItemRepository{db: db}
}

func (r *MySQLOrderItemRepository) Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (int64, error) {
	query := `
		INSERT INTO OrderItems (orderId, productId, name, unitPrice, quantity, lineTotal)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		item.OrderID, item.ProductID, item.Name, item.UnitPrice, item.Quantity, item.LineTotal,
	)
	if err != nil {
		return 0, errors.NewStorageError("inserting order item", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, errors.NewStorageError("getting last insert id", err)
	}

	return lastInsertID, nil
}

// FindByOrderIDs loads the items of every given order, keyed by order id and
// kept in insertion order.
func (r *MySQLOrderItemRepository) FindByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	result := make(map[int64][]domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(orderIDs))
	args := make([]interface{}, len(orderIDs))
	for i, id := range orderIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `
		SELECT id, orderId, productId, name, unitPrice, quantity, lineTotal
		FROM OrderItems
		WHERE orderId IN (` + strings.Join(placeholders, ",") + `)
		ORDER BY orderId, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStorageError("querying order items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Name,
			&item.UnitPrice, &item.Quantity, &item.LineTotal,
		); err != nil {
			return nil, errors.NewStorageError("scanning order item row", err)
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterating order item rows", err)
	}

	return result, nil
}
