package inventory

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Movement direction. Exactly three values; the human-facing subtype lives in
// Reason, never folded into the direction tag.
const (
	MovementIn         = "IN"
	MovementOut        = "OUT"
	MovementAdjustment = "ADJUSTMENT"
)

// Well-known movement reasons. Free text is allowed; these are the ones the
// core itself writes.
const (
	ReasonRestock        = "restock"
	ReasonCorrection     = "correction"
	ReasonLoss           = "loss"
	ReasonDamage         = "damage"
	ReasonOrderConfirmed = "order_confirmed"
	ReasonInitialStock   = "initial_stock"
	ReasonForcedOverride = "forced_override"
)

// Reference owner types for movements.
const (
	RefOrder      = "order"
	RefCart       = "cart"
	RefAdjustment = "adjustment"
	RefTransfer   = "transfer"
	RefImport     = "import"
)

// StockMovement represents stock_movement table — append-only ledger of every
// quantity change. Rows are never updated or deleted; corrections are new
// movements. NewQuantity == PreviousQuantity ± Quantity per Type.
type StockMovement struct {
	MovementID       uint             `gorm:"column:movement_id;primaryKey;autoIncrement" json:"movement_id"`
	ProductID        string           `gorm:"column:product_id;type:varchar(64);not null;index:idx_movement_product_created,priority:1" json:"product_id"`
	Type             string           `gorm:"column:type;type:varchar(12);not null" json:"type"`
	Quantity         int              `gorm:"column:quantity;not null" json:"quantity"`
	PreviousQuantity int              `gorm:"column:previous_quantity;not null" json:"previous_quantity"`
	NewQuantity      int              `gorm:"column:new_quantity;not null" json:"new_quantity"`
	UnitCost         *decimal.Decimal `gorm:"column:unit_cost;type:decimal(12,4)" json:"unit_cost,omitempty"`
	ReferenceType    string           `gorm:"column:reference_type;type:varchar(20)" json:"reference_type,omitempty"`
	ReferenceID      string           `gorm:"column:reference_id;type:varchar(64)" json:"reference_id,omitempty"`
	Reason           string           `gorm:"column:reason;type:varchar(64);not null" json:"reason"`
	CreatedBy        string           `gorm:"column:created_by;type:varchar(64)" json:"created_by,omitempty"`
	Metadata         datatypes.JSON   `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime;index:idx_movement_product_created,priority:2" json:"created_at"`
}

func (StockMovement) TableName() string {
	return "stock_movement"
}

// SignedEffect returns the delta this movement applied to physical quantity.
func (m *StockMovement) SignedEffect() int {
	switch m.Type {
	case MovementIn:
		return m.Quantity
	case MovementOut:
		return -m.Quantity
	default:
		return m.NewQuantity - m.PreviousQuantity
	}
}
