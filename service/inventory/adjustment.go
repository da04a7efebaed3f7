package inventory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	inventoryEntity "kasuwa.GO/model/entity/inventory"
	inventoryRepo "kasuwa.GO/model/repository/inventory"
)

// Adjustment types.
const (
	AdjustSet      = "set"
	AdjustIncrease = "increase"
	AdjustDecrease = "decrease"
)

// Adjustment is one direct change to physical stock (restock, correction,
// loss). Force permits dropping quantity below what is already reserved and
// must carry a reason.
type Adjustment struct {
	ProductID string           `json:"product_id"`
	Type      string           `json:"type"` // set, increase, decrease
	Quantity  int              `json:"quantity"`
	Reason    string           `json:"reason"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	CreatedBy string           `json:"created_by,omitempty"`
	Force     bool             `json:"force,omitempty"`
}

// AdjustmentEngine translates adjustments into signed deltas against the
// current quantity — re-read under the row lock at adjustment time, never
// from a caller's stale snapshot.
type AdjustmentEngine struct {
	records *inventoryRepo.RecordRepository
	gate    *AlertGate
	catalog ProductCatalog
}

func NewAdjustmentEngine(records *inventoryRepo.RecordRepository, gate *AlertGate, catalog ProductCatalog) *AdjustmentEngine {
	return &AdjustmentEngine{records: records, gate: gate, catalog: catalog}
}

// Adjust applies one adjustment and returns the updated record. Adjusting
// below the reserved quantity fails with InsufficientStockError unless the
// adjustment is forced, in which case the movement is tagged ADJUSTMENT and
// the override reason is recorded in the ledger.
func (e *AdjustmentEngine) Adjust(ctx context.Context, adj Adjustment) (*inventoryEntity.InventoryRecord, error) {
	if err := validateAdjustment(adj); err != nil {
		return nil, err
	}
	if err := checkProduct(ctx, e.catalog, adj.ProductID); err != nil {
		return nil, err
	}

	var deltaRes *inventoryRepo.DeltaResult
	err := e.records.WithRetry(adj.ProductID, func(tx *gorm.DB) error {
		rec, err := e.records.GetForUpdate(tx, adj.ProductID)
		if err != nil {
			return err
		}

		delta := 0
		switch adj.Type {
		case AdjustSet:
			delta = adj.Quantity - rec.Quantity
		case AdjustIncrease:
			delta = adj.Quantity
		case AdjustDecrease:
			delta = -adj.Quantity
		}
		if delta == 0 {
			// Nothing to move; keep the record as the result.
			deltaRes = &inventoryRepo.DeltaResult{Record: rec, PreviousStatus: rec.Status}
			return nil
		}

		cause := inventoryRepo.DeltaCause{
			Reason:        adj.Reason,
			ReferenceType: inventoryEntity.RefAdjustment,
			CreatedBy:     adj.CreatedBy,
			UnitCost:      adj.UnitCost,
			Force:         adj.Force,
		}
		if adj.Force {
			cause.MovementType = inventoryEntity.MovementAdjustment
		}

		deltaRes, err = e.records.ApplyDeltaTx(tx, adj.ProductID, delta, 0, cause)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.gate.AfterMutation(deltaRes)
	return deltaRes.Record, nil
}

func validateAdjustment(adj Adjustment) error {
	if adj.ProductID == "" {
		return fmt.Errorf("%w: adjustment product id is required", ErrInvalidInput)
	}
	switch adj.Type {
	case AdjustSet:
		if adj.Quantity < 0 {
			return fmt.Errorf("%w: set target must not be negative, got %d", ErrInvalidInput, adj.Quantity)
		}
	case AdjustIncrease, AdjustDecrease:
		if adj.Quantity <= 0 {
			return fmt.Errorf("%w: %s quantity must be positive, got %d", ErrInvalidInput, adj.Type, adj.Quantity)
		}
	default:
		return fmt.Errorf("%w: adjustment type must be set, increase or decrease, got %q", ErrInvalidInput, adj.Type)
	}
	if adj.Reason == "" {
		// The ledger must say why, forced overrides especially.
		return fmt.Errorf("%w: adjustment reason is required", ErrInvalidInput)
	}
	return nil
}

// BulkError pins a failure to its input position and product.
type BulkError struct {
	Index     int    `json:"index"`
	ProductID string `json:"product_id"`
	Error     string `json:"error"`
}

// BulkResult is the partial-success report for a bulk adjustment.
type BulkResult struct {
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Errors     []BulkError `json:"errors,omitempty"`
}

// BulkAdjust applies each adjustment independently; one item's failure never
// rolls back its siblings. Items run on a small worker pool, and per-product
// row locks keep same-product items correct regardless of scheduling.
func (e *AdjustmentEngine) BulkAdjust(ctx context.Context, items []Adjustment) *BulkResult {
	result := &BulkResult{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range items {
		i := i
		g.Go(func() error {
			_, err := e.Adjust(ctx, items[i])
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, BulkError{
					Index:     i,
					ProductID: items[i].ProductID,
					Error:     err.Error(),
				})
				return nil // collect, never cancel siblings
			}
			result.Successful++
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(result.Errors, func(a, b int) bool { return result.Errors[a].Index < result.Errors[b].Index })
	return result
}
