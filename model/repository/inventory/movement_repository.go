package inventory

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	inventoryEntity "kasuwa.GO/model/entity/inventory"
)

// MovementRepository is the append-only stock ledger. Movements are written
// only inside the transaction that also updates the inventory record, and are
// never updated or deleted afterwards.
type MovementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// Append writes one movement using tx (the caller's enclosing transaction).
// Rejects rows whose counters do not line up with the direction tag.
func (r *MovementRepository) Append(tx *gorm.DB, m *inventoryEntity.StockMovement) error {
	if m.Quantity <= 0 {
		return fmt.Errorf("movement quantity must be positive, got %d", m.Quantity)
	}
	switch m.Type {
	case inventoryEntity.MovementIn:
		if m.NewQuantity != m.PreviousQuantity+m.Quantity {
			return fmt.Errorf("IN movement mismatch: %d -> %d with quantity %d",
				m.PreviousQuantity, m.NewQuantity, m.Quantity)
		}
	case inventoryEntity.MovementOut:
		if m.NewQuantity != m.PreviousQuantity-m.Quantity {
			return fmt.Errorf("OUT movement mismatch: %d -> %d with quantity %d",
				m.PreviousQuantity, m.NewQuantity, m.Quantity)
		}
	case inventoryEntity.MovementAdjustment:
		diff := m.NewQuantity - m.PreviousQuantity
		if diff < 0 {
			diff = -diff
		}
		if diff != m.Quantity {
			return fmt.Errorf("ADJUSTMENT movement mismatch: %d -> %d with quantity %d",
				m.PreviousQuantity, m.NewQuantity, m.Quantity)
		}
	default:
		return fmt.Errorf("unknown movement type %q", m.Type)
	}
	return tx.Create(m).Error
}

// History returns the most recent movements for a product, newest first.
func (r *MovementRepository) History(productID string, limit int) ([]inventoryEntity.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	var movements []inventoryEntity.StockMovement
	err := r.db.
		Where("product_id = ?", productID).
		Order("movement_id DESC").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}

// InRange returns movements for a product inside [from, to), oldest first.
func (r *MovementRepository) InRange(productID string, from, to time.Time) ([]inventoryEntity.StockMovement, error) {
	var movements []inventoryEntity.StockMovement
	err := r.db.
		Where("product_id = ? AND created_at >= ? AND created_at < ?", productID, from, to).
		Order("movement_id ASC").
		Find(&movements).Error
	return movements, err
}

// Replay folds every movement for a product, in creation order, from an
// initial quantity of zero. The result must equal the record's current
// quantity — the ledger-completeness audit uses it.
func (r *MovementRepository) Replay(productID string) (int, error) {
	var movements []inventoryEntity.StockMovement
	err := r.db.
		Where("product_id = ?", productID).
		Order("movement_id ASC").
		Find(&movements).Error
	if err != nil {
		return 0, err
	}
	qty := 0
	for i := range movements {
		qty += movements[i].SignedEffect()
	}
	return qty, nil
}
