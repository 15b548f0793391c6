package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrConnection = errors.New("connection error")
	ErrSchema     = errors.New("schema error")
	ErrIntegrity  = errors.New("integrity error")
	ErrQuery      = errors.New("query error")
	ErrRowShape   = errors.New("row does not match insert columns")
)

// MySQL server error numbers that mean a row broke a table constraint.
var integrityErrors = map[uint16]bool{
	1048: true, // column cannot be null
	1062: true, // duplicate entry
	1216: true, // cannot add child row (legacy FK)
	1217: true, // cannot delete parent row (legacy FK)
	1264: true, // out of range value
	1292: true, // incorrect date/time value
	1366: true, // incorrect value for column
	1406: true, // data too long
	1451: true, // row is referenced
	1452: true, // foreign key fails
	3819: true, // check constraint violated
	4025: true, // check constraint violated (MariaDB)
}

var connectionErrors = map[uint16]bool{
	1040: true, // too many connections
	1044: true, // access denied to database
	1045: true, // access denied for user
	1049: true, // unknown database
	1129: true, // host blocked
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return connectionErrors[myErr.Number]
	}
	return false
}

func isIntegrityError(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return integrityErrors[myErr.Number]
	}
	return false
}

// classify picks the error kind for a failed statement. Connection loss wins
// over the fallback kind; cancellation has no kind of its own.
func classify(err error, fallback error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil
	case isConnectionError(err):
		return ErrConnection
	case fallback == ErrIntegrity && !isIntegrityError(err):
		return ErrQuery
	default:
		return fallback
	}
}

func wrapErr(err, fallback error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	kind := classify(err, fallback)
	if kind == nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%w: %s: %w", kind, msg, err)
}
