package inventory

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kasuwa.GO/config"
	inventoryEntity "kasuwa.GO/model/entity/inventory"
	inventoryRepo "kasuwa.GO/model/repository/inventory"
)

// OwnerRef identifies the cart or order a reservation belongs to. Exactly
// one owner per reservation.
type OwnerRef struct {
	Type string // RefOrder or RefCart
	ID   string
}

// ReservationManager creates, extends, releases and expires time-bound holds.
// Holds shrink available quantity without mutating physical quantity, so no
// ledger entry is written for reserve/release — only a consume (release with
// the order_confirmed reason) moves physical stock.
type ReservationManager struct {
	records      *inventoryRepo.RecordRepository
	reservations *inventoryRepo.ReservationRepository
	gate         *AlertGate
	catalog      ProductCatalog
}

func NewReservationManager(
	records *inventoryRepo.RecordRepository,
	reservations *inventoryRepo.ReservationRepository,
	gate *AlertGate,
	catalog ProductCatalog,
) *ReservationManager {
	return &ReservationManager{
		records:      records,
		reservations: reservations,
		gate:         gate,
		catalog:      catalog,
	}
}

// Reserve places a hold of quantity units for the owner. The availability
// check is a fresh read under the product's row lock — two concurrent
// reserves can never both spend the same available unit. Partial holds are
// never created: either the full quantity is reserved or nothing is.
func (m *ReservationManager) Reserve(ctx context.Context, productID string, quantity int, owner OwnerRef, reason string, ttlMinutes int) (*inventoryEntity.StockReservation, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: reservation quantity must be positive, got %d", ErrInvalidInput, quantity)
	}
	if owner.Type != inventoryEntity.RefOrder && owner.Type != inventoryEntity.RefCart {
		return nil, fmt.Errorf("%w: reservation owner must be an order or a cart", ErrInvalidInput)
	}
	if owner.ID == "" {
		return nil, fmt.Errorf("%w: reservation owner id is required", ErrInvalidInput)
	}
	if err := checkProduct(ctx, m.catalog, productID); err != nil {
		return nil, err
	}
	if ttlMinutes <= 0 {
		ttlMinutes = config.ReservationTTLMinutes()
	}

	now := time.Now().UTC()
	res := &inventoryEntity.StockReservation{
		ReservationID: uuid.NewString(),
		ProductID:     productID,
		Quantity:      quantity,
		Reason:        reason,
		ExpiresAt:     now.Add(time.Duration(ttlMinutes) * time.Minute),
		CreatedAt:     now,
	}
	switch owner.Type {
	case inventoryEntity.RefOrder:
		res.OrderID = &owner.ID
	case inventoryEntity.RefCart:
		res.CartID = &owner.ID
	}

	var deltaRes *inventoryRepo.DeltaResult
	err := m.records.WithRetry(productID, func(tx *gorm.DB) error {
		// Lazy reap: stale expired holds for this product give their units
		// back before the availability check, so they never block a sale.
		if err := m.reapExpiredTx(tx, productID, now); err != nil {
			return err
		}

		r, err := m.records.ApplyDeltaTx(tx, productID, 0, quantity, inventoryRepo.DeltaCause{
			Reason:        reason,
			ReferenceType: owner.Type,
			ReferenceID:   owner.ID,
		})
		if err != nil {
			return err
		}
		if err := m.reservations.Insert(tx, res); err != nil {
			return err
		}
		deltaRes = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.gate.AfterMutation(deltaRes)
	return res, nil
}

// reapExpiredTx releases this product's expired holds inside tx.
func (m *ReservationManager) reapExpiredTx(tx *gorm.DB, productID string, now time.Time) error {
	expired, err := m.reservations.ExpiredByProductLocked(tx, productID, now)
	if err != nil {
		return err
	}
	reaped := 0
	for i := range expired {
		qty, err := m.reservations.MarkReleased(tx, expired[i].ReservationID, inventoryEntity.ReleaseReasonExpired, now)
		if err != nil {
			return err
		}
		reaped += qty
	}
	if reaped == 0 {
		return nil
	}
	_, err = m.records.ApplyDeltaTx(tx, productID, 0, -reaped, inventoryRepo.DeltaCause{
		Reason: inventoryEntity.ReleaseReasonExpired,
	})
	return err
}

// Release gives a hold's units back. Idempotent: releasing an already
// released (or already expired-and-swept) reservation returns 0 and no
// error, so retried webhooks are safe. A release with the order_confirmed
// reason consumes the hold instead — physical stock drops by the reserved
// quantity in the same transaction, with an OUT movement in the ledger.
func (m *ReservationManager) Release(reservationID, reason string) (int, error) {
	res, err := m.reservations.GetByID(reservationID)
	if err != nil {
		return 0, err
	}

	released := 0
	var deltaRes *inventoryRepo.DeltaResult
	err = m.records.WithRetry(res.ProductID, func(tx *gorm.DB) error {
		released = 0
		deltaRes = nil
		now := time.Now().UTC()
		qty, err := m.reservations.MarkReleased(tx, reservationID, reason, now)
		if err != nil {
			return err
		}
		if qty == 0 {
			return nil
		}

		qtyDelta := 0
		cause := inventoryRepo.DeltaCause{Reason: reason}
		cause.ReferenceType, cause.ReferenceID = res.OwnerRef()
		if reason == inventoryEntity.ReleaseReasonConfirmed {
			// Order placed: the hold becomes a real deduction.
			qtyDelta = -qty
		}
		r, err := m.records.ApplyDeltaTx(tx, res.ProductID, qtyDelta, -qty, cause)
		if err != nil {
			return err
		}
		released = qty
		deltaRes = r
		return nil
	})
	if err != nil {
		return 0, err
	}
	if deltaRes != nil {
		m.gate.AfterMutation(deltaRes)
	}
	return released, nil
}

// ReleaseByOwner releases every active hold for a cart or order. Returns the
// total quantity given back. Individual failures are logged and skipped so a
// bad row cannot wedge a cart clear.
func (m *ReservationManager) ReleaseByOwner(owner OwnerRef, reason string) (int, error) {
	list, err := m.reservations.ActiveByOwner(owner.Type, owner.ID, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	total := 0
	for i := range list {
		qty, err := m.Release(list[i].ReservationID, reason)
		if err != nil {
			log.Printf("[ReservationManager] release %s for %s=%s: %v",
				list[i].ReservationID, owner.Type, owner.ID, err)
			continue
		}
		total += qty
	}
	return total, nil
}

// Extend pushes an active reservation's expiry out by extraMinutes. Released
// or expired-and-swept holds cannot be extended — a new reservation must be
// made instead.
func (m *ReservationManager) Extend(reservationID string, extraMinutes int) (*inventoryEntity.StockReservation, error) {
	if extraMinutes <= 0 {
		return nil, fmt.Errorf("%w: extension minutes must be positive, got %d", ErrInvalidInput, extraMinutes)
	}
	res, err := m.reservations.GetByID(reservationID)
	if err != nil {
		return nil, err
	}
	if res.IsReleased {
		return nil, inventoryRepo.ErrReservationReleased
	}
	newExpiry := res.ExpiresAt.Add(time.Duration(extraMinutes) * time.Minute)
	if until := time.Until(res.ExpiresAt); until < 0 {
		// Already past TTL but not swept: extend from now, not from the past.
		newExpiry = time.Now().UTC().Add(time.Duration(extraMinutes) * time.Minute)
	}
	if err := m.reservations.ExtendExpiry(reservationID, newExpiry); err != nil {
		return nil, err
	}
	res.ExpiresAt = newExpiry
	return res, nil
}

// ExpireSweep releases every reservation whose TTL ran out, in batches, and
// returns how many it reaped. Safe to run concurrently with itself and with
// Release: the conditional update in MarkReleased makes each hold releasable
// exactly once.
func (m *ReservationManager) ExpireSweep(now time.Time) (int, error) {
	const batch = 200
	count := 0
	for {
		expired, err := m.reservations.ExpiredBefore(now, batch)
		if err != nil {
			return count, err
		}
		if len(expired) == 0 {
			return count, nil
		}
		reaped := 0
		for i := range expired {
			qty, err := m.Release(expired[i].ReservationID, inventoryEntity.ReleaseReasonExpired)
			if err != nil {
				log.Printf("[ReservationManager] expire %s: %v", expired[i].ReservationID, err)
				continue
			}
			if qty > 0 {
				count++
				reaped++
			}
		}
		// No progress means every row in the batch is stuck (or a concurrent
		// sweep got there first) — bail instead of spinning on the same rows.
		if reaped == 0 || len(expired) < batch {
			return count, nil
		}
	}
}

// ActiveReservations lists the live holds for a product.
func (m *ReservationManager) ActiveReservations(productID string) ([]inventoryEntity.StockReservation, error) {
	return m.reservations.ActiveByProduct(productID, time.Now().UTC())
}
