package inventory

import (
	"time"

	"gorm.io/datatypes"
)

// Alert types and severities.
const (
	AlertLowStock    = "LOW_STOCK"
	AlertOutOfStock  = "OUT_OF_STOCK"
	AlertOverstocked = "OVERSTOCKED"
	AlertReorder     = "REORDER_SUGGESTED"

	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// InventoryAlert represents inventory_alert table. Alerts are derived signals,
// not authoritative state — the table exists only so acknowledge/dismiss
// survive restarts. Truncating it loses nothing that cannot be regenerated.
type InventoryAlert struct {
	AlertID        uint           `gorm:"column:alert_id;primaryKey;autoIncrement" json:"alert_id"`
	ProductID      string         `gorm:"column:product_id;type:varchar(64);not null;index" json:"product_id"`
	Type           string         `gorm:"column:type;type:varchar(24);not null" json:"type"`
	Severity       string         `gorm:"column:severity;type:varchar(12);not null" json:"severity"`
	Message        string         `gorm:"column:message;type:varchar(255)" json:"message"`
	IsAcknowledged bool           `gorm:"column:is_acknowledged;not null;default:false" json:"is_acknowledged"`
	IsDismissed    bool           `gorm:"column:is_dismissed;not null;default:false" json:"is_dismissed"`
	Metadata       datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (InventoryAlert) TableName() string {
	return "inventory_alert"
}
