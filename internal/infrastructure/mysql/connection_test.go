package mysql

import (
	"database/sql"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablepos/internal/config"
)

// Unit Tests

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "db.local",
		Port:     3307,
		User:     "pos",
		Password: "pw",
		Name:     "tablepos",
	}

	dsn := DSN(cfg, false)
	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)

	assert.Equal(t, "pos", parsed.User)
	assert.Equal(t, "pw", parsed.Passwd)
	assert.Equal(t, "db.local:3307", parsed.Addr)
	assert.Equal(t, "tablepos", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.False(t, parsed.MultiStatements)

	migrationDSN, err := mysql.ParseDSN(DSN(cfg, true))
	require.NoError(t, err)
	assert.True(t, migrationDSN.MultiStatements)
}

func TestNewTxManager(t *testing.T) {
	db := &sql.DB{}
	m := NewTxManager(db, 0)

	assert.NotNil(t, m)
	assert.Equal(t, db, m.db)
}
