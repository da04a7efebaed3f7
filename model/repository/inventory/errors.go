package inventory

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound — no inventory record exists for the product.
	// Read paths never auto-create records.
	ErrProductNotFound = errors.New("inventory record not found")

	// ErrReservationNotFound — release/extend referenced a reservation that
	// does not exist. Double-release of a known reservation is a no-op, not
	// this error.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrReservationReleased — extend referenced a reservation that was
	// already released or expired; a new reservation must be created.
	ErrReservationReleased = errors.New("reservation already released")

	// ErrNotImplemented is returned by declared-but-stubbed collaborators.
	ErrNotImplemented = errors.New("not implemented")
)

// InsufficientStockError — the requested reservation or adjustment would
// violate reserved <= quantity.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// NegativeStockError — the adjustment would drive physical quantity below
// zero (or past the backorder limit when backorder is allowed).
type NegativeStockError struct {
	ProductID string
	Current   int
	Delta     int
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("adjustment would drive product %s negative: current %d, delta %d",
		e.ProductID, e.Current, e.Delta)
}

// ConcurrentModificationError — the per-product retry budget was exhausted.
// The whole operation is safe to retry.
type ConcurrentModificationError struct {
	ProductID string
	Attempts  int
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("concurrent modification of product %s: gave up after %d attempts",
		e.ProductID, e.Attempts)
}
