// Package apperr defines the failure taxonomy used across the service layer
// and the reporter that turns failures into user-visible notifications.
package apperr

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

type Kind int

const (
	KindUnclassified Kind = iota
	KindDatabase
	KindAPI
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindDatabase:
		return "database"
	case KindAPI:
		return "api"
	case KindValidation:
		return "validation"
	default:
		return "unclassified"
	}
}

// DatabaseError marks a store or connectivity failure.
type DatabaseError struct {
	Err error
}

func (e *DatabaseError) Error() string { return "database: " + e.Err.Error() }
func (e *DatabaseError) Unwrap() error { return e.Err }

// APIError is a failure from an external API that answered with a status.
type APIError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("api status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Err }

// UpstreamError is a failure reaching an external API that never answered
// with a status. It is reported as unclassified, not as a store failure.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string { return e.Service + ": " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// Classify reports which handler a failure belongs to.
func Classify(err error) Kind {
	if err == nil {
		return KindUnclassified
	}
	if _, ok := AsValidation(err); ok {
		return KindValidation
	}
	if _, ok := AsAPI(err); ok {
		return KindAPI
	}
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return KindUnclassified
	}
	if isDatabase(err) {
		return KindDatabase
	}
	return KindUnclassified
}

func isDatabase(err error) bool {
	var dbErr *DatabaseError
	var myErr *mysql.MySQLError
	var liteErr sqlite3.Error
	var netErr net.Error
	switch {
	case errors.As(err, &dbErr),
		errors.As(err, &myErr),
		errors.As(err, &liteErr),
		errors.As(err, &netErr):
		return true
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, sql.ErrTxDone),
		errors.Is(err, gorm.ErrInvalidDB),
		errors.Is(err, gorm.ErrInvalidTransaction):
		return true
	}
	return false
}

func AsAPI(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// AsValidation accepts both ValidationError and ozzo's field error map.
func AsValidation(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string][]string, len(fieldErrs))
		for name, fe := range fieldErrs {
			if fe != nil {
				fields[name] = append(fields[name], fe.Error())
			}
		}
		return &ValidationError{Message: fieldErrs.Error(), Fields: fields}, true
	}
	return nil, false
}

// IsWakeUp matches the timeout a serverless database returns while resuming
// from a pause.
func IsWakeUp(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Connection Timeout Expired") &&
		strings.Contains(msg, "post-login phase")
}
