package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"kasuwa.GO/core/cache"
	inventoryEntity "kasuwa.GO/model/entity/inventory"
	inventoryRepo "kasuwa.GO/model/repository/inventory"
)

// InventoryService is the facade the HTTP/GraphQL/CLI layers talk to. All
// operations take and return plain records; errors are the typed ones from
// the repository package, never transport codes.
type InventoryService struct {
	records      *inventoryRepo.RecordRepository
	movements    *inventoryRepo.MovementRepository
	reservations *inventoryRepo.ReservationRepository
	alerts       *inventoryRepo.AlertRepository
	gate         *AlertGate
	reserver     *ReservationManager
	adjuster     *AdjustmentEngine
	search       *MovementSearchService
	cache        *cache.Cache
}

// NewInventoryService wires the inventory core against a database handle.
// redisClient may be nil (alert publishing disabled); catalog may be nil
// (record existence is the only product check).
func NewInventoryService(db *gorm.DB, redisClient *redis.Client, catalog ProductCatalog) *InventoryService {
	records := inventoryRepo.NewRecordRepository(db)
	movements := inventoryRepo.NewMovementRepository(db)
	reservations := inventoryRepo.NewReservationRepository(db)
	alerts := inventoryRepo.NewAlertRepository(db)
	gate := NewAlertGate(alerts, redisClient)
	if catalog == nil {
		catalog = UnimplementedCatalog{}
	}

	return &InventoryService{
		records:      records,
		movements:    movements,
		reservations: reservations,
		alerts:       alerts,
		gate:         gate,
		reserver:     NewReservationManager(records, reservations, gate, catalog),
		adjuster:     NewAdjustmentEngine(records, gate, catalog),
		search:       GetSearchService(),
		cache:        cache.GetInstance(),
	}
}

// Reservations exposes the reservation manager.
func (s *InventoryService) Reservations() *ReservationManager {
	return s.reserver
}

// Adjustments exposes the adjustment engine.
func (s *InventoryService) Adjustments() *AdjustmentEngine {
	return s.adjuster
}

// Get returns the inventory record for a product.
func (s *InventoryService) Get(productID string) (*inventoryEntity.InventoryRecord, error) {
	return s.records.Get(productID)
}

// History returns the most recent ledger entries for a product.
func (s *InventoryService) History(productID string, limit int) ([]inventoryEntity.StockMovement, error) {
	if _, err := s.records.Get(productID); err != nil {
		return nil, err
	}
	return s.movements.History(productID, limit)
}

// MovementsInRange returns ledger entries inside [from, to).
func (s *InventoryService) MovementsInRange(productID string, from, to time.Time) ([]inventoryEntity.StockMovement, error) {
	return s.movements.InRange(productID, from, to)
}

// VerifyLedger replays the full ledger for a product and compares the result
// with the record's current quantity. Zero drift is the invariant.
func (s *InventoryService) VerifyLedger(productID string) (replayed, current int, err error) {
	rec, err := s.records.Get(productID)
	if err != nil {
		return 0, 0, err
	}
	replayed, err = s.movements.Replay(productID)
	if err != nil {
		return 0, 0, err
	}
	return replayed, rec.Quantity, nil
}

// UpdateThresholds changes the alerting thresholds and recomputes status.
func (s *InventoryService) UpdateThresholds(productID string, lowStock, reorderPoint, reorderQty, maxLevel int) (*inventoryEntity.InventoryRecord, error) {
	rec, err := s.records.UpdateThresholds(productID, lowStock, reorderPoint, reorderQty, maxLevel)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateTag("product:" + productID)
	return rec, nil
}

// SetLifecycleStatus moves a record into or out of DISCONTINUED/INACTIVE.
func (s *InventoryService) SetLifecycleStatus(productID, status string) (*inventoryEntity.InventoryRecord, error) {
	switch status {
	case inventoryEntity.StatusDiscontinued, inventoryEntity.StatusInactive, inventoryEntity.StatusActive:
	default:
		return nil, fmt.Errorf("%w: lifecycle status must be DISCONTINUED, INACTIVE or ACTIVE, got %q", ErrInvalidInput, status)
	}
	rec, err := s.records.SetLifecycleStatus(productID, status)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateTag("product:" + productID)
	return rec, nil
}

// ActiveReservations lists live holds for a product.
func (s *InventoryService) ActiveReservations(productID string) ([]inventoryEntity.StockReservation, error) {
	if _, err := s.records.Get(productID); err != nil {
		return nil, err
	}
	return s.reservations.ActiveByProduct(productID, time.Now().UTC())
}

// LowStockAlerts returns open alerts for the admin dashboard.
func (s *InventoryService) LowStockAlerts(limit int) ([]inventoryEntity.InventoryAlert, error) {
	return s.alerts.Open(limit)
}

// AcknowledgeAlert marks an alert seen.
func (s *InventoryService) AcknowledgeAlert(alertID uint) error {
	return s.alerts.Acknowledge(alertID)
}

// DismissAlert closes an alert.
func (s *InventoryService) DismissAlert(alertID uint) error {
	return s.alerts.Dismiss(alertID)
}

// RecheckAlerts scans alerting-status records and re-fires any whose open
// alert row went missing. Returns the number of alerts regenerated.
func (s *InventoryService) RecheckAlerts() (int, error) {
	recs, err := s.records.ListByStatus(
		inventoryEntity.StatusOutOfStock,
		inventoryEntity.StatusLowStock,
		inventoryEntity.StatusOverstocked,
	)
	if err != nil {
		return 0, err
	}
	return s.gate.Recheck(recs), nil
}

// ExpireReservations reaps expired holds. Cron entry point.
func (s *InventoryService) ExpireReservations(now time.Time) (int, error) {
	return s.reserver.ExpireSweep(now)
}

// ReorderSuggestion pairs a record with the quantity to reorder.
type ReorderSuggestion struct {
	ProductID       string `json:"product_id"`
	Available       int    `json:"available"`
	ReorderPoint    int    `json:"reorder_point"`
	ReorderQuantity int    `json:"reorder_quantity"`
}

// ReorderSuggestions lists products at or below their reorder point.
func (s *InventoryService) ReorderSuggestions() ([]ReorderSuggestion, error) {
	recs, err := s.records.ListBelowReorderPoint()
	if err != nil {
		return nil, err
	}
	out := make([]ReorderSuggestion, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		if !rec.Sellable() {
			continue
		}
		qty := rec.ReorderQuantity
		if qty <= 0 {
			qty = rec.ReorderPoint * 2
		}
		out = append(out, ReorderSuggestion{
			ProductID:       rec.ProductID,
			Available:       rec.AvailableQuantity(),
			ReorderPoint:    rec.ReorderPoint,
			ReorderQuantity: qty,
		})
	}
	return out, nil
}

// AvailabilityView is the realtime read model for storefront checks.
type AvailabilityView struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Reserved  int    `json:"reserved"`
	Available int    `json:"available"`
	Status    string `json:"status"`
}

// Availability returns the current availability for a product, served from
// the per-product cache when warm. Mutating paths invalidate the tag.
func (s *InventoryService) Availability(productID string) (*AvailabilityView, error) {
	cacheKey := "availability:" + productID
	if v, ok := s.cache.Get(cacheKey); ok {
		if view, isView := v.(*AvailabilityView); isView {
			return view, nil
		}
	}
	rec, err := s.records.Get(productID)
	if err != nil {
		return nil, err
	}
	view := &AvailabilityView{
		ProductID: rec.ProductID,
		Quantity:  rec.Quantity,
		Reserved:  rec.ReservedQuantity,
		Available: rec.AvailableQuantity(),
		Status:    rec.Status,
	}
	s.cache.Set(cacheKey, view, 30, []string{"product:" + productID})
	return view, nil
}

// ImportItem is the JSON input for the bulk stock import API.
type ImportItem struct {
	ProductID         string   `json:"product_id"`
	Quantity          int      `json:"quantity"`
	LowStockThreshold int      `json:"low_stock_threshold"`
	ReorderPoint      int      `json:"reorder_point"`
	ReorderQuantity   int      `json:"reorder_quantity"`
	MaxStockLevel     int      `json:"max_stock_level"`
	UnitCost          *float64 `json:"unit_cost"`
	AllowBackorder    bool     `json:"allow_backorder"`
	BackorderLimit    int      `json:"backorder_limit"`
}

// ImportResult holds the result of a stock import run.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// ImportStock initializes or tops up inventory records in bulk. New products
// get a fresh record; existing ones receive the quantity as an IN movement.
// Items are independent — bad rows are reported, not fatal.
func (s *InventoryService) ImportStock(ctx context.Context, items []ImportItem, createdBy string) (*ImportResult, error) {
	res := &ImportResult{}
	for i := range items {
		item := &items[i]
		if item.ProductID == "" {
			res.Skipped++
			res.Warnings = append(res.Warnings, fmt.Sprintf("item %d: product_id is required", i))
			continue
		}
		if item.Quantity < 0 {
			res.Skipped++
			res.Warnings = append(res.Warnings, fmt.Sprintf("product %s: negative quantity %d", item.ProductID, item.Quantity))
			continue
		}
		if err := s.importOne(ctx, item, createdBy); err != nil {
			res.Skipped++
			res.Warnings = append(res.Warnings, fmt.Sprintf("product %s: %v", item.ProductID, err))
			continue
		}
		res.Imported++
	}
	log.Printf("[InventoryService] stock import: imported=%d skipped=%d", res.Imported, res.Skipped)
	return res, nil
}

func (s *InventoryService) importOne(ctx context.Context, item *ImportItem, createdBy string) error {
	_, err := s.records.Get(item.ProductID)
	if errors.Is(err, inventoryRepo.ErrProductNotFound) {
		rec := &inventoryEntity.InventoryRecord{
			ProductID:         item.ProductID,
			LowStockThreshold: item.LowStockThreshold,
			ReorderPoint:      item.ReorderPoint,
			ReorderQuantity:   item.ReorderQuantity,
			MaxStockLevel:     item.MaxStockLevel,
			AllowBackorder:    item.AllowBackorder,
			BackorderLimit:    item.BackorderLimit,
		}
		if err := s.records.Create(rec); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if item.Quantity == 0 {
		return nil
	}

	var unitCost *decimal.Decimal
	if item.UnitCost != nil {
		c := decimal.NewFromFloat(*item.UnitCost)
		unitCost = &c
	}
	deltaRes, err := s.records.ApplyDelta(item.ProductID, item.Quantity, 0, inventoryRepo.DeltaCause{
		Reason:        inventoryEntity.ReasonInitialStock,
		ReferenceType: inventoryEntity.RefImport,
		CreatedBy:     createdBy,
		UnitCost:      unitCost,
	})
	if err != nil {
		return err
	}
	s.gate.AfterMutation(deltaRes)
	return nil
}
