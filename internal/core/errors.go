package core

import (
	"errors"
	"fmt"
)

// ValidationError reports caller-supplied data that violates an entity
// invariant. It is always raised before any store mutation begins.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InsufficientFundsError is a business-rule rejection distinct from
// validation: the transaction is well-formed but the source account
// balance cannot support the requested debit. It is evaluated inside
// the same physical transaction as the write.
type InsufficientFundsError struct {
	Available Money
	Required  Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: available %s, required %s", e.Available, e.Required)
}

func IsInsufficientFunds(err error) bool {
	var ie *InsufficientFundsError
	return errors.As(err, &ie)
}

// DuplicateEmailError surfaces the email uniqueness violation distinctly
// from generic store errors so callers can render a specific message.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

func IsDuplicateEmail(err error) bool {
	var de *DuplicateEmailError
	return errors.As(err, &de)
}

// StoreError wraps any lower-level store failure. The enclosing physical
// transaction has been fully rolled back by the time one is returned.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

var ErrInvalidAmount = NewValidationError("amount must be positive")
