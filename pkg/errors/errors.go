package errors

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Kind classifies a storage failure.
type Kind string

const (
	KindDuplicate     Kind = "duplicate"
	KindMissingTable  Kind = "missing_table"
	KindMissingColumn Kind = "missing_column"
	KindPermission    Kind = "permission"
	KindConnectivity  Kind = "connectivity"
	KindNotFound      Kind = "not_found"
	KindUnknown       Kind = "unknown"
)

// PostgreSQL SQLSTATE codes the classifier understands.
const (
	codeUniqueViolation      = "23505"
	codeUndefinedTable       = "42P01"
	codeUndefinedColumn      = "42703"
	codeInsufficientPrivs    = "42501"
	classConnectionException = "08"
)

// StoreError is a classified storage failure with a message fit for an
// administrator.
type StoreError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

// Classify turns a raw storage error into a *StoreError. nil stays nil and
// an error that already is a *StoreError is returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return se
	}
	kind := kindOf(err)
	return &StoreError{Kind: kind, Message: messageFor(kind), Err: err}
}

// KindOf returns the classification of err, KindUnknown when it has none.
func KindOf(err error) Kind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	if err == nil {
		return ""
	}
	return kindOf(err)
}

// IsConnectivity reports whether err means the store could not be reached.
func IsConnectivity(err error) bool {
	return err != nil && KindOf(err) == KindConnectivity
}

// IsDuplicate reports a unique-constraint violation.
func IsDuplicate(err error) bool {
	return err != nil && KindOf(err) == KindDuplicate
}

func kindOf(err error) Kind {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return KindNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return KindDuplicate
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if k := kindForCode(pgErr.Code); k != "" {
			return k
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if k := kindForCode(string(pqErr.Code)); k != "" {
			return k
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return KindConnectivity
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindConnectivity
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, context.DeadlineExceeded) {
		return KindConnectivity
	}

	// drivers that only expose text
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"), strings.Contains(msg, "duplicate key"):
		return KindDuplicate
	case strings.Contains(msg, "no such table"), strings.Contains(msg, "does not exist") && strings.Contains(msg, "relation"):
		return KindMissingTable
	case strings.Contains(msg, "no such column"), strings.Contains(msg, "has no column"):
		return KindMissingColumn
	case strings.Contains(msg, "permission denied"), strings.Contains(msg, "row-level security"):
		return KindPermission
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"),
		strings.Contains(msg, "broken pipe"), strings.Contains(msg, "i/o timeout"),
		strings.Contains(msg, "sql: database is closed"):
		return KindConnectivity
	}
	return KindUnknown
}

func kindForCode(code string) Kind {
	switch code {
	case codeUniqueViolation:
		return KindDuplicate
	case codeUndefinedTable:
		return KindMissingTable
	case codeUndefinedColumn:
		return KindMissingColumn
	case codeInsufficientPrivs:
		return KindPermission
	}
	if strings.HasPrefix(code, classConnectionException) {
		return KindConnectivity
	}
	return ""
}

func messageFor(kind Kind) string {
	switch kind {
	case KindDuplicate:
		return "a record with the same key already exists"
	case KindMissingTable:
		return "a required table is missing; run `admin migrate`"
	case KindMissingColumn:
		return "a required column is missing; run `admin migrate`"
	case KindPermission:
		return "the database rejected the operation; check the grants of the application role"
	case KindConnectivity:
		return "the database is unreachable"
	case KindNotFound:
		return "record not found"
	}
	return "unexpected database error"
}

// Wrap annotates err with the operation name while keeping its classification.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, Classify(err))
}
