package inventory

import (
	"errors"
	"time"

	"gorm.io/gorm"

	inventoryEntity "kasuwa.GO/model/entity/inventory"
)

// ReservationRepository persists stock reservations. Only IsReleased,
// ReleasedAt, ReleaseReason and ExpiresAt ever change after insert; the
// release path is a conditional update so doing it twice is harmless.
type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Insert writes a reservation using tx (the reserve transaction).
func (r *ReservationRepository) Insert(tx *gorm.DB, res *inventoryEntity.StockReservation) error {
	return tx.Create(res).Error
}

// GetByID returns a reservation regardless of its released state.
func (r *ReservationRepository) GetByID(reservationID string) (*inventoryEntity.StockReservation, error) {
	var res inventoryEntity.StockReservation
	err := r.db.Where("reservation_id = ?", reservationID).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// MarkReleased flips a reservation to released if and only if it is still
// active. Returns the released quantity, or 0 when it was already released —
// callers retrying webhooks rely on that being a no-op.
func (r *ReservationRepository) MarkReleased(tx *gorm.DB, reservationID, reason string, now time.Time) (int, error) {
	var res inventoryEntity.StockReservation
	err := tx.Where("reservation_id = ?", reservationID).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrReservationNotFound
	}
	if err != nil {
		return 0, err
	}
	upd := tx.Model(&inventoryEntity.StockReservation{}).
		Where("reservation_id = ? AND is_released = ?", reservationID, false).
		Updates(map[string]interface{}{
			"is_released":    true,
			"released_at":    now,
			"release_reason": reason,
		})
	if upd.Error != nil {
		return 0, upd.Error
	}
	if upd.RowsAffected == 0 {
		// Lost the race or already released — either way, nothing to give back.
		return 0, nil
	}
	return res.Quantity, nil
}

// ExtendExpiry pushes out the TTL of a still-active reservation.
func (r *ReservationRepository) ExtendExpiry(reservationID string, newExpiry time.Time) error {
	upd := r.db.Model(&inventoryEntity.StockReservation{}).
		Where("reservation_id = ? AND is_released = ?", reservationID, false).
		Update("expires_at", newExpiry)
	if upd.Error != nil {
		return upd.Error
	}
	if upd.RowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// ActiveByProduct returns unexpired, unreleased reservations for a product.
func (r *ReservationRepository) ActiveByProduct(productID string, now time.Time) ([]inventoryEntity.StockReservation, error) {
	var list []inventoryEntity.StockReservation
	err := r.db.
		Where("product_id = ? AND is_released = ? AND expires_at > ?", productID, false, now).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

// ActiveByOwner returns the active reservations owned by a cart or order.
func (r *ReservationRepository) ActiveByOwner(ownerType, ownerID string, now time.Time) ([]inventoryEntity.StockReservation, error) {
	var list []inventoryEntity.StockReservation
	q := r.db.Where("is_released = ?", false)
	switch ownerType {
	case inventoryEntity.RefOrder:
		q = q.Where("order_id = ?", ownerID)
	case inventoryEntity.RefCart:
		q = q.Where("cart_id = ?", ownerID)
	default:
		return nil, errors.New("owner type must be order or cart")
	}
	err := q.Order("created_at ASC").Find(&list).Error
	return list, err
}

// ExpiredBefore returns unreleased reservations whose TTL ran out, oldest
// first, capped at limit (the sweep works in batches).
func (r *ReservationRepository) ExpiredBefore(now time.Time, limit int) ([]inventoryEntity.StockReservation, error) {
	if limit <= 0 {
		limit = 200
	}
	var list []inventoryEntity.StockReservation
	err := r.db.
		Where("is_released = ? AND expires_at < ?", false, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// ExpiredByProductLocked returns a product's expired-but-unreleased holds
// inside tx. The reserve path reaps these lazily before checking
// availability so a stale hold never blocks a sale.
func (r *ReservationRepository) ExpiredByProductLocked(tx *gorm.DB, productID string, now time.Time) ([]inventoryEntity.StockReservation, error) {
	var list []inventoryEntity.StockReservation
	err := tx.
		Where("product_id = ? AND is_released = ? AND expires_at < ?", productID, false, now).
		Find(&list).Error
	return list, err
}
