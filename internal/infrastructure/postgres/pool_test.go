package postgres

import (
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/pkg/config"
)

func TestPoolConfigFor(t *testing.T) {
	cfg := config.DBConfig{
		Host: "db", Port: 5432, User: "app", Password: "x", DBName: "lotes", SSLMode: "disable",
		MaxConns: 7, LockTimeout: 3 * time.Second,
	}
	pc, err := poolConfigFor(cfg)
	require.NoError(t, err)

	assert.EqualValues(t, 7, pc.MaxConns)
	assert.Equal(t, "3000", pc.ConnConfig.RuntimeParams["lock_timeout"])
	assert.Equal(t, "lotes-api", pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "db", pc.ConnConfig.Host)
	assert.NotNil(t, pc.AfterConnect)
}

func TestPoolConfigFor_DSNInvalido(t *testing.T) {
	_, err := poolConfigFor(config.DBConfig{DatabaseURL: "postgres://%zz"})
	assert.Error(t, err)
}

func TestIsRetryableTxError(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03"} {
		err := fmt.Errorf("tx: %w", &pgconn.PgError{Code: code})
		assert.True(t, isRetryableTxError(err), code)
	}
	assert.False(t, isRetryableTxError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isRetryableTxError(fmt.Errorf("otro")))
}

func TestPersistence_ConservaErroresDeDominio(t *testing.T) {
	ie := domain.ConcurrencyConflict("A")
	assert.Same(t, ie, persistence("op", ie))

	err := persistence("update lot", fmt.Errorf("conexión cerrada"))
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
