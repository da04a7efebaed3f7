package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock status values. Recomputed after every mutation — callers never set
// these directly, except DISCONTINUED/INACTIVE which are sticky admin states.
const (
	StatusActive       = "ACTIVE"
	StatusLowStock     = "LOW_STOCK"
	StatusOutOfStock   = "OUT_OF_STOCK"
	StatusOverstocked  = "OVERSTOCKED"
	StatusDiscontinued = "DISCONTINUED"
	StatusInactive     = "INACTIVE"
)

// InventoryRecord represents inventory_record table — one mutable summary row
// per product. Reserved never exceeds Quantity; both are guarded by the
// repository transaction, not here.
type InventoryRecord struct {
	RecordID          uint            `gorm:"column:record_id;primaryKey;autoIncrement" json:"record_id,omitempty"`
	ProductID         string          `gorm:"column:product_id;type:varchar(64);not null;uniqueIndex" json:"product_id"`
	Quantity          int             `gorm:"column:quantity;not null;default:0" json:"quantity"`
	ReservedQuantity  int             `gorm:"column:reserved_quantity;not null;default:0" json:"reserved_quantity"`
	LowStockThreshold int             `gorm:"column:low_stock_threshold;not null;default:0" json:"low_stock_threshold"`
	ReorderPoint      int             `gorm:"column:reorder_point;not null;default:0" json:"reorder_point"`
	ReorderQuantity   int             `gorm:"column:reorder_quantity;not null;default:0" json:"reorder_quantity"`
	MaxStockLevel     int             `gorm:"column:max_stock_level;not null;default:0" json:"max_stock_level"`
	Status            string          `gorm:"column:status;type:varchar(20);not null;default:ACTIVE" json:"status"`
	AllowBackorder    bool            `gorm:"column:allow_backorder;not null;default:false" json:"allow_backorder"`
	BackorderLimit    int             `gorm:"column:backorder_limit;not null;default:0" json:"backorder_limit"`
	AverageCost       decimal.Decimal `gorm:"column:average_cost;type:decimal(12,4);not null;default:0" json:"average_cost"`
	LastCost          decimal.Decimal `gorm:"column:last_cost;type:decimal(12,4);not null;default:0" json:"last_cost"`
	Version           uint            `gorm:"column:version;not null;default:0" json:"-"`
	LastMovementAt    *time.Time      `gorm:"column:last_movement_at" json:"last_movement_at,omitempty"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (InventoryRecord) TableName() string {
	return "inventory_record"
}

// AvailableQuantity is derived, never stored.
func (r *InventoryRecord) AvailableQuantity() int {
	return r.Quantity - r.ReservedQuantity
}

// Sellable reports whether the record accepts new reservations at all.
func (r *InventoryRecord) Sellable() bool {
	return r.Status != StatusDiscontinued && r.Status != StatusInactive
}

// BelowReorderPoint reports whether a reorder suggestion applies.
func (r *InventoryRecord) BelowReorderPoint() bool {
	return r.ReorderPoint > 0 && r.AvailableQuantity() <= r.ReorderPoint
}
