package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
)

var (
	ErrValidation              = errors.New("validation")
	ErrNotFound                = errors.New("not found")
	ErrConflict                = errors.New("conflict")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrInvalidAdminCredentials = errors.New("invalid admin credentials")
	ErrEmailNotConfirmed       = errors.New("email not confirmed")
	ErrInvalidToken            = errors.New("invalid or expired token")
	ErrAlreadyConfirmed        = errors.New("email already confirmed")
	ErrEmailDelivery           = errors.New("email delivery failed")
	ErrInsufficientStock       = errors.New("insufficient stock")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: msg}}}
}

type StockError struct {
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Only %d items available in stock", e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// UnconfirmedError carries the account that tried to log in.
type UnconfirmedError struct {
	User *models.User
}

func (e *UnconfirmedError) Error() string { return ErrEmailNotConfirmed.Error() }

func (e *UnconfirmedError) Unwrap() error { return ErrEmailNotConfirmed }

// NotFoundError names the missing resource in its message.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func notFound(msg string) error { return &NotFoundError{Msg: msg} }
