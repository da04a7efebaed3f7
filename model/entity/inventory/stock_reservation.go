package inventory

import (
	"time"
)

// Reservation release reasons written by the core.
const (
	ReleaseReasonExpired   = "expired"
	ReleaseReasonCancelled = "cancelled"
	ReleaseReasonConfirmed = "order_confirmed"
	ReleaseReasonCleared   = "cart_cleared"
)

// StockReservation represents stock_reservation table — a time-bound hold
// that shrinks available quantity without touching physical quantity. Owned
// by exactly one cart or one order. Once released (explicitly or by expiry)
// it never becomes active again; callers create a new one instead.
type StockReservation struct {
	ReservationID string     `gorm:"column:reservation_id;type:varchar(36);primaryKey" json:"reservation_id"`
	ProductID     string     `gorm:"column:product_id;type:varchar(64);not null;index" json:"product_id"`
	Quantity      int        `gorm:"column:quantity;not null" json:"quantity"`
	OrderID       *string    `gorm:"column:order_id;type:varchar(64);index" json:"order_id,omitempty"`
	CartID        *string    `gorm:"column:cart_id;type:varchar(64);index" json:"cart_id,omitempty"`
	Reason        string     `gorm:"column:reason;type:varchar(64)" json:"reason,omitempty"`
	ExpiresAt     time.Time  `gorm:"column:expires_at;not null;index" json:"expires_at"`
	IsReleased    bool       `gorm:"column:is_released;not null;default:false" json:"is_released"`
	ReleasedAt    *time.Time `gorm:"column:released_at" json:"released_at,omitempty"`
	ReleaseReason string     `gorm:"column:release_reason;type:varchar(64)" json:"release_reason,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (StockReservation) TableName() string {
	return "stock_reservation"
}

// Active reports whether the hold still counts toward reserved quantity.
func (r *StockReservation) Active(now time.Time) bool {
	return !r.IsReleased && now.Before(r.ExpiresAt)
}

// Expired reports whether the hold passed its TTL without being released.
func (r *StockReservation) Expired(now time.Time) bool {
	return !r.IsReleased && !now.Before(r.ExpiresAt)
}

// OwnerRef returns the owning reference (order wins if both are somehow set).
func (r *StockReservation) OwnerRef() (refType, refID string) {
	if r.OrderID != nil && *r.OrderID != "" {
		return RefOrder, *r.OrderID
	}
	if r.CartID != nil && *r.CartID != "" {
		return RefCart, *r.CartID
	}
	return "", ""
}
