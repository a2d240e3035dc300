package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

var (
	// ErrDuplicateUser indicates the email is already registered.
	ErrDuplicateUser = errors.New("user with this email already exists")

	// ErrConstraint indicates a referential or uniqueness integrity failure
	// reported by the storage layer.
	ErrConstraint = errors.New("constraint violation")
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so query code can run inside
// or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// isDuplicateKey reports whether err is a unique-key violation from either
// supported driver (MySQL 1062 or SQLite UNIQUE).
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate entry") || strings.Contains(msg, "unique constraint")
}

// isForeignKey reports whether err is a foreign-key violation from either
// supported driver.
func isForeignKey(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key")
}
