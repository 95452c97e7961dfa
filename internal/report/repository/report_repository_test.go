package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablepos/internal/domain"
	"tablepos/internal/testutil"
)

// Unit Tests

func TestNewMySQLReportRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLReportRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

type seedOrder struct {
	number    int64
	status    domain.OrderStatus
	method    string
	createdBy string
	createdAt time.Time
	total     int64
	items     []domain.OrderItem
}

func seed(t *testing.T, db *sql.DB, orders ...seedOrder) {
	t.Helper()

	for _, o := range orders {
		var method interface{}
		if o.method != "" {
			method = o.method
		}
		res, err := db.Exec(`
			INSERT INTO Orders (orderNumber, tableNo, createdAt, createdBy, paymentMethod, subtotal, taxAmount, total, status)
			VALUES (?, 'T1', ?, ?, ?, ?, 0, ?, ?)`,
			o.number, o.createdAt, o.createdBy, method, o.total, o.total, o.status,
		)
		require.NoError(t, err)
		orderID, err := res.LastInsertId()
		require.NoError(t, err)

		for _, it := range o.items {
			_, err := db.Exec(`
				INSERT INTO OrderItems (orderId, name, unitPrice, quantity, lineTotal)
				VALUES (?, ?, ?, ?, ?)`,
				orderID, it.Name, it.UnitPrice, it.Quantity, it.LineTotal,
			)
			require.NoError(t, err)
		}
	}
}

func at(day, hour int) time.Time {
	return time.Date(2026, 3, day, hour, 0, 0, 0, time.UTC)
}

func seedDay(t *testing.T, db *sql.DB) {
	seed(t, db,
		seedOrder{number: 1001, status: domain.OrderStatusPaid, method: "cash", createdBy: "ali", createdAt: at(1, 12), total: 15750,
			items: []domain.OrderItem{{Name: "Kebab", UnitPrice: 5000, Quantity: 2, LineTotal: 10000}, {Name: "Rice", UnitPrice: 2500, Quantity: 2, LineTotal: 5000}}},
		seedOrder{number: 1002, status: domain.OrderStatusOpen, createdBy: "huda", createdAt: at(1, 13), total: 9999,
			items: []domain.OrderItem{{Name: "Lobster", UnitPrice: 9999, Quantity: 1, LineTotal: 9999}}},
		seedOrder{number: 1003, status: domain.OrderStatusVoid, createdBy: "huda", createdAt: at(1, 14), total: 500},
		seedOrder{number: 1004, status: domain.OrderStatusPaid, method: "card", createdBy: "huda", createdAt: at(1, 23), total: 5250,
			items: []domain.OrderItem{{Name: "Rice", UnitPrice: 2500, Quantity: 2, LineTotal: 5000}}},
		seedOrder{number: 1005, status: domain.OrderStatusPaid, method: "credit", createdBy: "ali", createdAt: at(2, 0), total: 1000},
	)
}

func TestReportRepository_FindPaidBetween(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewMySQLReportRepository(db)
	seedDay(t, db)

	orders, err := repo.FindPaidBetween(context.Background(), at(1, 0), at(2, 0))
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, int64(1001), orders[0].OrderNumber)
	assert.Equal(t, int64(1004), orders[1].OrderNumber)
	require.Len(t, orders[0].Items, 2)
	assert.Equal(t, "Kebab", orders[0].Items[0].Name)
	require.Len(t, orders[1].Items, 1)
	require.NotNil(t, orders[1].PaymentMethod)
	assert.Equal(t, domain.PaymentMethodCard, *orders[1].PaymentMethod)
}

func TestReportRepository_FindPaidBetween_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewMySQLReportRepository(db)

	orders, err := repo.FindPaidBetween(context.Background(), at(1, 0), at(2, 0))
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestReportRepository_SumPaidBetween(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewMySQLReportRepository(db)
	seedDay(t, db)

	count, total, err := repo.SumPaidBetween(context.Background(), at(1, 0), at(3, 0))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, int64(22000), total)

	count, total, err = repo.SumPaidBetween(context.Background(), at(5, 0), at(6, 0))
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, total)
}

func TestReportRepository_SumPaidByOperator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewMySQLReportRepository(db)
	seedDay(t, db)

	rows, err := repo.SumPaidByOperator(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, domain.OperatorSummary{Operator: "ali", TotalSales: 16750, OrderCount: 2}, rows[0])
	assert.Equal(t, domain.OperatorSummary{Operator: "huda", TotalSales: 5250, OrderCount: 1}, rows[1])
}
