package store

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgreSQL error codes surfaced as named outcomes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Store implements the content repository over a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// New creates a Store backed by the given pool.
func New(pool *pgxpool.Pool, log zerolog.Logger) *Store {
	return &Store{pool: pool, log: log}
}

// isUniqueViolation reports whether err is a unique-constraint violation,
// optionally on a constraint whose name contains the given fragment.
func isUniqueViolation(err error, constraintFragment string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraintFragment == "" || strings.Contains(pgErr.ConstraintName, constraintFragment)
}

// isForeignKeyViolation reports whether err is a foreign-key violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
