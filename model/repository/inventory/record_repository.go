package inventory

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kasuwa.GO/config"
	inventoryEntity "kasuwa.GO/model/entity/inventory"
)

// errVersionConflict aborts the enclosing transaction when the optimistic
// version guard misses; WithRetry translates it into a fresh attempt.
var errVersionConflict = errors.New("record version conflict")

// DeltaCause describes who/why for a counter mutation. One movement row is
// written whenever the physical quantity changes.
type DeltaCause struct {
	Reason        string
	ReferenceType string
	ReferenceID   string
	CreatedBy     string
	UnitCost      *decimal.Decimal
	Metadata      datatypes.JSON
	// Force allows quantity to drop below reserved (documented override).
	Force bool
	// MovementType overrides the direction tag derived from the delta sign.
	// Forced corrections write ADJUSTMENT here.
	MovementType string
}

// DeltaResult is what a committed mutation looked like. PreviousStatus feeds
// the alerting gate's transition check.
type DeltaResult struct {
	Record         *inventoryEntity.InventoryRecord
	PreviousStatus string
	Movement       *inventoryEntity.StockMovement
}

// RecordRepository is the inventory record store: one mutable row per product,
// and the single serialization point for all concurrent writers of that
// product. Every mutation goes through ApplyDeltaTx — controllers never
// compute deltas against stale reads themselves.
type RecordRepository struct {
	db        *gorm.DB
	movements *MovementRepository
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db, movements: NewMovementRepository(db)}
}

// DB exposes the underlying handle for callers composing wider transactions.
func (r *RecordRepository) DB() *gorm.DB {
	return r.db
}

// Get returns the record for a product. Never auto-creates.
func (r *RecordRepository) Get(productID string) (*inventoryEntity.InventoryRecord, error) {
	var rec inventoryEntity.InventoryRecord
	err := r.db.Where("product_id = ?", productID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetForUpdate reads the record under a row lock inside tx. Serializes all
// writers for the product on MySQL; sqlite serializes at the database level.
func (r *RecordRepository) GetForUpdate(tx *gorm.DB, productID string) (*inventoryEntity.InventoryRecord, error) {
	var rec inventoryEntity.InventoryRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create initializes a record with zero counters. Initial stock must flow
// through ApplyDeltaTx so the ledger replays to the current quantity.
func (r *RecordRepository) Create(rec *inventoryEntity.InventoryRecord) error {
	rec.Quantity = 0
	rec.ReservedQuantity = 0
	if rec.LowStockThreshold <= 0 {
		rec.LowStockThreshold = config.LowStockThreshold()
	}
	if rec.Status == "" {
		rec.Status = inventoryEntity.StatusOutOfStock
	}
	return r.db.Create(rec).Error
}

// WithRetry runs fn in a transaction, retrying the whole transaction when the
// version guard trips, and surfaces ConcurrentModificationError once the
// budget is spent.
func (r *RecordRepository) WithRetry(productID string, fn func(tx *gorm.DB) error) error {
	attempts := config.DeltaRetryAttempts
	for attempt := 1; ; attempt++ {
		err := r.db.Transaction(fn)
		if err == nil || !errors.Is(err, errVersionConflict) {
			return err
		}
		if attempt >= attempts {
			return &ConcurrentModificationError{ProductID: productID, Attempts: attempts}
		}
	}
}

// ApplyDelta is the single-mutation convenience: one delta, one transaction,
// retried on version conflict.
func (r *RecordRepository) ApplyDelta(productID string, qtyDelta, reservedDelta int, cause DeltaCause) (*DeltaResult, error) {
	var result *DeltaResult
	err := r.WithRetry(productID, func(tx *gorm.DB) error {
		res, err := r.ApplyDeltaTx(tx, productID, qtyDelta, reservedDelta, cause)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyDeltaTx mutates quantity and/or reserved counters for one product
// inside the caller's transaction: row lock, invariant checks, ledger write,
// status recompute, versioned update. qtyDelta changes physical stock,
// reservedDelta the reserved counter; a consume (order confirmed) passes
// both. No partial state survives a failed check — returning an error rolls
// back the whole transaction, ledger entry included.
func (r *RecordRepository) ApplyDeltaTx(tx *gorm.DB, productID string, qtyDelta, reservedDelta int, cause DeltaCause) (*DeltaResult, error) {
	rec, err := r.GetForUpdate(tx, productID)
	if err != nil {
		return nil, err
	}

	prevStatus := rec.Status
	newQty := rec.Quantity + qtyDelta
	newReserved := rec.ReservedQuantity + reservedDelta

	if newReserved < 0 {
		return nil, fmt.Errorf("reserved counter for product %s would go negative (%d)", productID, newReserved)
	}
	floor := 0
	if rec.AllowBackorder {
		floor = -rec.BackorderLimit
	}
	if newQty < floor {
		return nil, &NegativeStockError{ProductID: productID, Current: rec.Quantity, Delta: qtyDelta}
	}
	// Promised stock shares the backorder floor: available may run down to
	// it, never past it, unless the caller forces through.
	if newQty-newReserved < floor && !cause.Force {
		return nil, &InsufficientStockError{
			ProductID: productID,
			Requested: requestedOf(qtyDelta, reservedDelta),
			Available: rec.Quantity - rec.ReservedQuantity,
		}
	}

	now := time.Now().UTC()
	var movement *inventoryEntity.StockMovement
	if qtyDelta != 0 {
		movement = buildMovement(rec, qtyDelta, newQty, now, cause)
		if err := r.movements.Append(tx, movement); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"quantity":          newQty,
		"reserved_quantity": newReserved,
		"version":           rec.Version + 1,
		"updated_at":        now,
	}
	if movement != nil {
		updates["last_movement_at"] = now
	}
	if cause.UnitCost != nil && qtyDelta > 0 {
		last, avg := rollCost(rec, qtyDelta, newQty, *cause.UnitCost)
		updates["last_cost"] = last
		updates["average_cost"] = avg
		rec.LastCost = last
		rec.AverageCost = avg
	}

	rec.Quantity = newQty
	rec.ReservedQuantity = newReserved
	updates["status"] = inventoryEntity.NextStatus(rec)
	rec.Status = updates["status"].(string)
	rec.Version++
	rec.UpdatedAt = now
	if movement != nil {
		rec.LastMovementAt = &now
	}

	// Versioned write: the row lock should make this a formality, but a miss
	// means another writer slipped between read and write, so abort and let
	// WithRetry re-read.
	res := tx.Model(&inventoryEntity.InventoryRecord{}).
		Where("record_id = ? AND version = ?", rec.RecordID, rec.Version-1).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errVersionConflict
	}

	return &DeltaResult{Record: rec, PreviousStatus: prevStatus, Movement: movement}, nil
}

func requestedOf(qtyDelta, reservedDelta int) int {
	if reservedDelta > 0 {
		return reservedDelta
	}
	if qtyDelta < 0 {
		return -qtyDelta
	}
	return qtyDelta
}

func buildMovement(rec *inventoryEntity.InventoryRecord, qtyDelta, newQty int, now time.Time, cause DeltaCause) *inventoryEntity.StockMovement {
	mType := cause.MovementType
	if mType == "" {
		if qtyDelta > 0 {
			mType = inventoryEntity.MovementIn
		} else {
			mType = inventoryEntity.MovementOut
		}
	}
	qty := qtyDelta
	if qty < 0 {
		qty = -qty
	}
	return &inventoryEntity.StockMovement{
		ProductID:        rec.ProductID,
		Type:             mType,
		Quantity:         qty,
		PreviousQuantity: rec.Quantity,
		NewQuantity:      newQty,
		UnitCost:         cause.UnitCost,
		ReferenceType:    cause.ReferenceType,
		ReferenceID:      cause.ReferenceID,
		Reason:           cause.Reason,
		CreatedBy:        cause.CreatedBy,
		Metadata:         cause.Metadata,
		CreatedAt:        now,
	}
}

// rollCost updates last/average cost for an incoming quantity. Average is
// weighted over the resulting on-hand quantity.
func rollCost(rec *inventoryEntity.InventoryRecord, qtyDelta, newQty int, unit decimal.Decimal) (last, avg decimal.Decimal) {
	last = unit
	if newQty <= 0 {
		return last, unit
	}
	onHand := decimal.NewFromInt(int64(rec.Quantity))
	incoming := decimal.NewFromInt(int64(qtyDelta))
	total := rec.AverageCost.Mul(onHand).Add(unit.Mul(incoming))
	avg = total.DivRound(decimal.NewFromInt(int64(newQty)), 4)
	return last, avg
}

// UpdateThresholds changes alerting/reorder settings without touching
// counters. Status is recomputed since the threshold feeds it.
func (r *RecordRepository) UpdateThresholds(productID string, lowStock, reorderPoint, reorderQty, maxLevel int) (*inventoryEntity.InventoryRecord, error) {
	var rec *inventoryEntity.InventoryRecord
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		rec, err = r.GetForUpdate(tx, productID)
		if err != nil {
			return err
		}
		rec.LowStockThreshold = lowStock
		rec.ReorderPoint = reorderPoint
		rec.ReorderQuantity = reorderQty
		rec.MaxStockLevel = maxLevel
		rec.Status = inventoryEntity.NextStatus(rec)
		rec.Version++
		return tx.Model(&inventoryEntity.InventoryRecord{}).
			Where("record_id = ?", rec.RecordID).
			Updates(map[string]interface{}{
				"low_stock_threshold": lowStock,
				"reorder_point":       reorderPoint,
				"reorder_quantity":    reorderQty,
				"max_stock_level":     maxLevel,
				"status":              rec.Status,
				"version":             rec.Version,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// SetLifecycleStatus sets the sticky DISCONTINUED/INACTIVE states, or clears
// them back to a recomputed stock status.
func (r *RecordRepository) SetLifecycleStatus(productID, status string) (*inventoryEntity.InventoryRecord, error) {
	if status != inventoryEntity.StatusDiscontinued &&
		status != inventoryEntity.StatusInactive &&
		status != inventoryEntity.StatusActive {
		return nil, fmt.Errorf("lifecycle status must be DISCONTINUED, INACTIVE or ACTIVE, got %q", status)
	}
	var rec *inventoryEntity.InventoryRecord
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		rec, err = r.GetForUpdate(tx, productID)
		if err != nil {
			return err
		}
		rec.Status = status
		if status == inventoryEntity.StatusActive {
			rec.Status = inventoryEntity.NextStatus(rec)
		}
		rec.Version++
		return tx.Model(&inventoryEntity.InventoryRecord{}).
			Where("record_id = ?", rec.RecordID).
			Updates(map[string]interface{}{"status": rec.Status, "version": rec.Version}).Error
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListByStatus returns records in any of the given statuses.
func (r *RecordRepository) ListByStatus(statuses ...string) ([]inventoryEntity.InventoryRecord, error) {
	var recs []inventoryEntity.InventoryRecord
	err := r.db.Where("status IN ?", statuses).Order("product_id ASC").Find(&recs).Error
	return recs, err
}

// ListBelowReorderPoint returns records whose available quantity sits at or
// under their reorder point (reorder point 0 means the rule is off).
func (r *RecordRepository) ListBelowReorderPoint() ([]inventoryEntity.InventoryRecord, error) {
	var recs []inventoryEntity.InventoryRecord
	err := r.db.
		Where("reorder_point > 0 AND quantity - reserved_quantity <= reorder_point").
		Order("product_id ASC").
		Find(&recs).Error
	return recs, err
}
