package lib

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorCode is the failure taxonomy surfaced to clients. An order placement
// resolves to exactly one of these; partial success is not representable.
type ErrorCode string

const (
	CodeValidation        ErrorCode = "validation_error"
	CodeNotFound          ErrorCode = "not_found"
	CodeInsufficientStock ErrorCode = "insufficient_stock"
	CodeConflict          ErrorCode = "conflict"
	CodeInternal          ErrorCode = "internal_error"
)

// AppError is a classified error with an optional reference to the cart line
// that caused it, so the client can name the affected item.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Line    string    `json:"line,omitempty"` // "product_id color/size" of the offending line
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string) *AppError {
	return &AppError{Code: CodeValidation, Message: msg}
}

func NewNotFoundError(msg, line string) *AppError {
	return &AppError{Code: CodeNotFound, Message: msg, Line: line}
}

func NewInsufficientStockError(msg, line string) *AppError {
	return &AppError{Code: CodeInsufficientStock, Message: msg, Line: line}
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "internal error", Err: err}
}

// AsAppError extracts an *AppError from err, wrapping unknown errors as
// internal so callers always get a classified outcome.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// Database sentinel errors
var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

// Auth errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// MapPgError maps PostgreSQL SQLSTATE codes onto the sentinel errors above.
func MapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return ErrConflict
		case "P0002": // no_data_found
			return ErrNotFound
		}
	}
	return err
}
