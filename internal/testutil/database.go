package testutil

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"tablepos/internal/config"
	"tablepos/internal/infrastructure/mysql"
)

// One MySQL container per test binary; every SetupTestDB call empties the
// tables instead of starting a new server.
var (
	mysqlOnce sync.Once
	mysqlDSN  string
	mysqlErr  error

	redisOnce sync.Once
	redisURL  string
	redisErr  error
)

func startMySQL() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcmysql.Run(ctx,
		"mysql:8.4",
		tcmysql.WithDatabase("tablepos_test"),
		tcmysql.WithUsername("tablepos"),
		tcmysql.WithPassword("tablepos"),
	)
	if err != nil {
		return "", err
	}

	migrationDSN, err := container.ConnectionString(ctx, "parseTime=true", "multiStatements=true")
	if err != nil {
		return "", err
	}
	if err := mysql.MigrateUp(migrationDSN); err != nil {
		return "", err
	}

	return container.ConnectionString(ctx, "parseTime=true")
}

// SetupTestDB returns a connection to a migrated, empty test database.
// Tests are skipped when Docker is not available.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	mysqlOnce.Do(func() {
		mysqlDSN, mysqlErr = startMySQL()
	})
	if mysqlErr != nil {
		t.Skipf("test database not available: %v", mysqlErr)
	}

	db, err := mysql.Open(mysqlDSN, config.DatabaseConfig{MaxOpenConns: 20, MaxIdleConns: 20})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	CleanupTables(t, db)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// CleanupTables empties every table and rewinds the order number sequence.
func CleanupTables(t *testing.T, db *sql.DB) {
	t.Helper()

	statements := []string{
		"DELETE FROM OrderItems",
		"DELETE FROM Orders",
		"DELETE FROM Product",
		"DELETE FROM Category",
		"UPDATE OrderSequence SET lastValue = 0 WHERE name = 'orders'",
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to clean test database (%s): %v", stmt, err)
		}
	}
}

// InsertProduct adds a catalog row and returns its id.
func InsertProduct(t *testing.T, db *sql.DB, name string, price int64, active bool) int64 {
	t.Helper()

	res, err := db.Exec(`INSERT INTO Product (name, price, isActive) VALUES (?, ?, ?)`, name, price, active)
	if err != nil {
		t.Fatalf("failed to insert product: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read product id: %v", err)
	}
	return id
}

// SetupTestRedis returns the URL of a Redis server shared by the test binary.
func SetupTestRedis(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	redisOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		container, err := tcredis.Run(ctx, "redis:7-alpine")
		if err != nil {
			redisErr = err
			return
		}
		redisURL, redisErr = container.ConnectionString(ctx)
	})
	if redisErr != nil {
		t.Skipf("test redis not available: %v", redisErr)
	}

	return redisURL
}
