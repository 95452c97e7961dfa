package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"tablepos/internal/domain"
	"tablepos/internal/errors"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

// FindActiveByIDs returns the active products among ids. Rows are read with a
// shared lock inside tx so the prices used for an order cannot change before
// it commits. Duplicate ids are returned once.
func (r *MySQLRepository) FindActiveByIDs(ctx context.Context, tx *sql.Tx, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.name, p.price, p.categoryId, COALESCE(c.name, ''), p.isActive, p.createdAt
		FROM Product p
		LEFT JOIN Category c ON c.id = p.categoryId
		WHERE p.id IN (%s)
		  AND p.isActive = 1
		ORDER BY p.id
		FOR SHARE OF p`,
		strings.Join(placeholders, ", "),
	)

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStorageError("querying products", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// ListActive returns the orderable menu, grouped by category name then product name.
func (r *MySQLRepository) ListActive(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT p.id, p.name, p.price, p.categoryId, COALESCE(c.name, ''), p.isActive, p.createdAt
		FROM Product p
		LEFT JOIN Category c ON c.id = p.categoryId
		WHERE p.isActive = 1
		ORDER BY COALESCE(c.name, ''), p.name, p.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewStorageError("querying active products", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *MySQLRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM Category ORDER BY name`)
	if err != nil {
		return nil, errors.NewStorageError("querying categories", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, errors.NewStorageError("scanning category row", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterating category rows", err)
	}

	return categories, nil
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ID, &p.Name, &p.Price, &p.CategoryID, &p.CategoryName,
			&p.IsActive, &p.CreatedAt,
		)
		if err != nil {
			return nil, errors.NewStorageError("scanning product row", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterating product rows", err)
	}

	return products, nil
}
