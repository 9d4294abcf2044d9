package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 3, cfg.Inventory.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.Inventory.IssueTimeout)
	assert.True(t, cfg.Inventory.RequireDisposeReason, "el motivo de desecho es obligatorio por defecto")
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/lotes.db")
	t.Setenv("INVENTORY_MAX_RETRIES", "5")
	t.Setenv("INVENTORY_ISSUE_TIMEOUT_SECONDS", "2")
	t.Setenv("INVENTORY_REQUIRE_DISPOSE_REASON", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/lotes.db", cfg.DB.SQLitePath)
	assert.Equal(t, 5, cfg.Inventory.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Inventory.IssueTimeout)
	assert.False(t, cfg.Inventory.RequireDisposeReason)
}

func TestLoad_Rechazos(t *testing.T) {
	t.Run("sin secreto JWT", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("driver desconocido", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secreto")
		t.Setenv("DB_DRIVER", "oracle")
		_, err := Load()
		assert.ErrorContains(t, err, "DB_DRIVER")
	})
	t.Run("reintentos en cero", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secreto")
		t.Setenv("INVENTORY_MAX_RETRIES", "0")
		_, err := Load()
		assert.ErrorContains(t, err, "INVENTORY_MAX_RETRIES")
	})
}

func TestDBConfig_DSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "lotes", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/lotes?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

func TestLoadDB_NoExigeSecreto(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "memory")

	db, err := LoadDB()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, db.Driver)

	t.Setenv("DB_DRIVER", "oracle")
	_, err = LoadDB()
	assert.Error(t, err)
}
