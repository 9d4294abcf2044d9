package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isRetryableTxError la tx puede repetirse completa:
// serialization_failure (40001), deadlock_detected (40P01) o lock_not_available (55P03).
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
