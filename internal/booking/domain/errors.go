package domain

import (
	"errors"
	"fmt"
)

// Erros do armazenamento.
var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrSeatTaken       = errors.New("seat already taken")
)

// Categorias usadas na fronteira HTTP com errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrStore      = errors.New("store error")
)

type ValidationError struct {
	Message string
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError indica que o assento já pertence a outra reserva no mesmo ônibus.
type ConflictError struct {
	BusNumber  string
	SeatNumber string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Seat %s is already taken on bus %s", e.SeatNumber, e.BusNumber)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StoreError embrulha uma falha inesperada do armazenamento.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Is(target error) bool { return target == ErrStore }

func (e *StoreError) Unwrap() error { return e.Err }
