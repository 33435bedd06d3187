package entity

import (
	"errors"
	"fmt"
)

// NotFoundError reports a referenced entity that does not exist or is
// soft-deleted. ID is zero for list results ("no X available") and for
// lookups that were not by id.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
	}
	return fmt.Sprintf("no %s available", e.Entity)
}

// PreconditionError reports a required prior step that is missing, e.g. a
// customer placing an order without an address.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

// InsufficientStockError names the product whose stock cannot cover the
// requested quantity. Available is -1 when the shortage was only discovered
// by the conditional decrement at commit time.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	if e.Available < 0 {
		return fmt.Sprintf("insufficient stock for product %q", e.Name)
	}
	return fmt.Sprintf("insufficient stock for product %q (available: %d, requested: %d)", e.Name, e.Available, e.Requested)
}

// ConflictError reports a state that already satisfies a uniqueness
// constraint, e.g. a second review for the same order line.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

func IsPrecondition(err error) bool {
	var p *PreconditionError
	var s *InsufficientStockError
	return errors.As(err, &p) || errors.As(err, &s)
}
