package modeltest

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	inventoryEntity "kasuwa.GO/model/entity/inventory"
	inventoryRepo "kasuwa.GO/model/repository/inventory"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&inventoryEntity.InventoryRecord{},
		&inventoryEntity.StockMovement{},
		&inventoryEntity.StockReservation{},
		&inventoryEntity.InventoryAlert{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedRecord(t *testing.T, repo *inventoryRepo.RecordRepository, productID string, qty int) {
	t.Helper()
	if err := repo.Create(&inventoryEntity.InventoryRecord{ProductID: productID}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if qty > 0 {
		_, err := repo.ApplyDelta(productID, qty, 0, inventoryRepo.DeltaCause{
			Reason: inventoryEntity.ReasonInitialStock,
		})
		if err != nil {
			t.Fatalf("seed stock: %v", err)
		}
	}
}

func TestRecordRepository_CreateDefaults(t *testing.T) {
	repo := inventoryRepo.NewRecordRepository(testDB(t))

	rec := &inventoryEntity.InventoryRecord{ProductID: "P-1", Quantity: 99, ReservedQuantity: 5}
	if err := repo.Create(rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.Get("P-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Quantity != 0 || got.ReservedQuantity != 0 {
		t.Errorf("counters = %d/%d, want 0/0 (stock must come through the ledger)", got.Quantity, got.ReservedQuantity)
	}
	if got.Status != inventoryEntity.StatusOutOfStock {
		t.Errorf("status = %q, want OUT_OF_STOCK", got.Status)
	}
	if got.LowStockThreshold <= 0 {
		t.Errorf("threshold = %d, want default applied", got.LowStockThreshold)
	}
}

func TestRecordRepository_GetMissing(t *testing.T) {
	repo := inventoryRepo.NewRecordRepository(testDB(t))
	_, err := repo.Get("nope")
	if !errors.Is(err, inventoryRepo.ErrProductNotFound) {
		t.Errorf("err = %v, want ErrProductNotFound", err)
	}
}

func TestRecordRepository_ApplyDelta_StockIn(t *testing.T) {
	repo := inventoryRepo.NewRecordRepository(testDB(t))
	seedRecord(t, repo, "P-1", 0)

	res, err := repo.ApplyDelta("P-1", 20, 0, inventoryRepo.DeltaCause{Reason: inventoryEntity.ReasonRestock})
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if res.Record.Quantity != 20 {
		t.Errorf("quantity = %d, want 20", res.Record.Quantity)
	}
	if res.Record.Status != inventoryEntity.StatusActive {
		t.Errorf("status = %q, want ACTIVE", res.Record.Status)
	}
	if res.PreviousStatus != inventoryEntity.StatusOutOfStock {
		t.Errorf("previous status = %q, want OUT_OF_STOCK", res.PreviousStatus)
	}
	m := res.Movement
	if m == nil {
		t.Fatal("movement not written")
	}
	if m.Type != inventoryEntity.MovementIn || m.Quantity != 20 || m.PreviousQuantity != 0 || m.NewQuantity != 20 {
		t.Errorf("movement = %+v, want IN 20 (0 -> 20)", m)
	}
}

func TestRecordRepository_ApplyDelta_ReserveTooMuch(t *testing.T) {
	repo := inventoryRepo.NewRecordRepository(testDB(t))
	seedRecord(t, repo, "P-1", 3)

	_, err := repo.ApplyDelta("P-1", 0, 5, inventoryRepo.DeltaCause{Reason: "hold"})
	var insufficient *inventoryRepo.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if insufficient.Requested != 5 || insufficient.Available != 3 {
		t.Errorf("requested/available = %d/%d, want 5/3", insufficient.Requested, insufficient.Available)
	}

	// Nothing partial: counters untouched, no movement written.
	rec, _ := repo.Get("P-1")
	if rec.ReservedQuantity != 0 {
		t.Errorf("reserved = %d, want 0", rec.ReservedQuantity)
	}
}

func TestRecordRepository_ApplyDelta_NegativeStock(t *testing.T) {
	repo := inventoryRepo.NewRecordRepository(testDB(t))
	seedRecord(t, repo, "P-1", 3)

	_, err := repo.ApplyDelta("P-1", -5, 0, inventoryRepo.DeltaCause{Reason: inventoryEntity.ReasonLoss})
	var negative *inventoryRepo.NegativeStockError
	if !errors.As(err, &negative) {
		t.Fatalf("err = %v, want NegativeStockError", err)
	}
}

func TestRecordRepository_ApplyDelta_BackorderFloor(t *testing.T) {
	db := testDB(t)
	repo := inventoryRepo.NewRecordRepository(db)
	if err := repo.Create(&inventoryEntity.InventoryRecord{
		ProductID:      "P-BO",
		AllowBackorder: true,
		BackorderLimit: 10,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.ApplyDelta("P-BO", 5, 0, inventoryRepo.DeltaCause{Reason: inventoryEntity.ReasonInitialStock}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// 5 on hand, backorder floor -10: selling 15 is fine, one more is not.
	if _, err := repo.ApplyDelta("P-BO", -15, 0, inventoryRepo.DeltaCause{Reason: inventoryEntity.ReasonOrderConfirmed}); err != nil {
		t.Fatalf("backorder within limit: %v", err)
	}
	rec, _ := repo.Get("P-BO")
	if rec.Quantity != -10 {
		t.Errorf("quantity = %d, want -10", rec.Quantity)
	}
	_, err := repo.ApplyDelta("P-BO", -1, 0, inventoryRepo.DeltaCause{Reason: inventoryEntity.ReasonOrderConfirmed})
	var negative *inventoryRepo.NegativeStockError
	if !errors.As(err, &negative) {
		t.Errorf("err = %v, want NegativeStockError past the backorder limit", err)
	}
}

func TestRecordRepository_ApplyDelta_BackorderPromise(t *testing.T) {
	db := testDB(t)
	repo := inventoryRepo.NewRecordRepository(db)
	if err := repo.Create(&inventoryEntity.InventoryRecord{
		ProductID:      "P-BO",
		AllowBackorder: true,
		BackorderLimit: 10,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.ApplyDelta("P-BO", 5, 0, inventoryRepo.DeltaCause{Reason: inventoryEntity.ReasonInitialStock}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Holds may promise stock down to the backorder floor: 5 on hand,
	// floor -10, so 12 reserved leaves available at -7.
	if _, err := repo.ApplyDelta("P-BO", 0, 12, inventoryRepo.DeltaCause{Reason: "hold"}); err != nil {
		t.Fatalf("reserve within backorder floor: %v", err)
	}
	rec, _ := repo.Get("P-BO")
	if rec.ReservedQuantity != 12 {
		t.Errorf("reserved = %d, want 12", rec.ReservedQuantity)
	}

	// Four more would push available to -11, past the floor.
	_, err := repo.ApplyDelta("P-BO", 0, 4, inventoryRepo.DeltaCause{Reason: "hold"})
	var insufficient *inventoryRepo.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Errorf("err = %v, want InsufficientStockError past the backorder floor", err)
	}
}

func TestRecordRepository_ApplyDelta_ForcedOverride(t *testing.T) {
	repo := inventoryRepo.NewRecordRepository(testDB(t))
	seedRecord(t, repo, "P-1", 10)
	if _, err := repo.ApplyDelta("P-1", 0, 8, inventoryRepo.DeltaCause{Reason: "hold"}); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	// Dropping to 5 with 8 reserved needs Force.
	_, err := repo.ApplyDelta("P-1", -5, 0, inventoryRepo.DeltaCause{Reason: inventoryEntity.ReasonCorrection})
	var insufficient *inventoryRepo.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("unforced err = %v, want InsufficientStockError", err)
	}

	res, err := repo.ApplyDelta("P-1", -5, 0, inventoryRepo.DeltaCause{
		Reason:       inventoryEntity.ReasonForcedOverride,
		Force:        true,
		MovementType: inventoryEntity.MovementAdjustment,
	})
	if err != nil {
		t.Fatalf("forced: %v", err)
	}
	if res.Record.Quantity != 5 || res.Record.ReservedQuantity != 8 {
		t.Errorf("counters = %d/%d, want 5/8", res.Record.Quantity, res.Record.ReservedQuantity)
	}
	if res.Movement.Type != inventoryEntity.MovementAdjustment {
		t.Errorf("movement type = %q, want ADJUSTMENT", res.Movement.Type)
	}
}

func TestRecordRepository_LedgerReplayMatchesQuantity(t *testing.T) {
	db := testDB(t)
	repo := inventoryRepo.NewRecordRepository(db)
	movements := inventoryRepo.NewMovementRepository(db)
	seedRecord(t, repo, "P-1", 50)

	deltas := []int{-10, 25, -7, -3, 40}
	for _, d := range deltas {
		reason := inventoryEntity.ReasonRestock
		if d < 0 {
			reason = inventoryEntity.ReasonOrderConfirmed
		}
		if _, err := repo.ApplyDelta("P-1", d, 0, inventoryRepo.DeltaCause{Reason: reason}); err != nil {
			t.Fatalf("delta %d: %v", d, err)
		}
	}

	replayed, err := movements.Replay("P-1")
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	rec, _ := repo.Get("P-1")
	if replayed != rec.Quantity {
		t.Errorf("replayed = %d, record quantity = %d", replayed, rec.Quantity)
	}
}

func TestRecordRepository_ReservationWritesNoMovement(t *testing.T) {
	db := testDB(t)
	repo := inventoryRepo.NewRecordRepository(db)
	movements := inventoryRepo.NewMovementRepository(db)
	seedRecord(t, repo, "P-1", 10)

	res, err := repo.ApplyDelta("P-1", 0, 4, inventoryRepo.DeltaCause{Reason: "hold"})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if res.Movement != nil {
		t.Error("reserved-only delta wrote a movement")
	}
	history, _ := movements.History("P-1", 0)
	if len(history) != 1 { // only the seed
		t.Errorf("history length = %d, want 1", len(history))
	}
}

func TestRecordRepository_UpdateThresholds_RecomputesStatus(t *testing.T) {
	repo := inventoryRepo.NewRecordRepository(testDB(t))
	seedRecord(t, repo, "P-1", 15)

	rec, err := repo.UpdateThresholds("P-1", 20, 5, 50, 0)
	if err != nil {
		t.Fatalf("UpdateThresholds: %v", err)
	}
	if rec.Status != inventoryEntity.StatusLowStock {
		t.Errorf("status = %q, want LOW_STOCK after raising the threshold above on-hand", rec.Status)
	}
}

func TestRecordRepository_LifecycleStatusSticky(t *testing.T) {
	repo := inventoryRepo.NewRecordRepository(testDB(t))
	seedRecord(t, repo, "P-1", 20)

	if _, err := repo.SetLifecycleStatus("P-1", inventoryEntity.StatusDiscontinued); err != nil {
		t.Fatalf("SetLifecycleStatus: %v", err)
	}

	// Stock keeps moving, status stays DISCONTINUED.
	res, err := repo.ApplyDelta("P-1", 30, 0, inventoryRepo.DeltaCause{Reason: inventoryEntity.ReasonRestock})
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if res.Record.Status != inventoryEntity.StatusDiscontinued {
		t.Errorf("status = %q, want DISCONTINUED to stick through movements", res.Record.Status)
	}

	// Reactivation recomputes from counters.
	rec, err := repo.SetLifecycleStatus("P-1", inventoryEntity.StatusActive)
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if rec.Status != inventoryEntity.StatusActive {
		t.Errorf("status = %q, want ACTIVE recomputed on reactivation", rec.Status)
	}

	_, err = repo.SetLifecycleStatus("P-1", "BOGUS")
	if err == nil {
		t.Error("want error for unknown lifecycle status")
	}
}

func TestRecordRepository_ListBelowReorderPoint(t *testing.T) {
	repo := inventoryRepo.NewRecordRepository(testDB(t))
	if err := repo.Create(&inventoryEntity.InventoryRecord{ProductID: "P-LOW", ReorderPoint: 10}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(&inventoryEntity.InventoryRecord{ProductID: "P-HIGH", ReorderPoint: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.ApplyDelta("P-LOW", 5, 0, inventoryRepo.DeltaCause{Reason: inventoryEntity.ReasonInitialStock}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.ApplyDelta("P-HIGH", 100, 0, inventoryRepo.DeltaCause{Reason: inventoryEntity.ReasonInitialStock}); err != nil {
		t.Fatal(err)
	}

	recs, err := repo.ListBelowReorderPoint()
	if err != nil {
		t.Fatalf("ListBelowReorderPoint: %v", err)
	}
	if len(recs) != 1 || recs[0].ProductID != "P-LOW" {
		t.Errorf("got %d records, want only P-LOW", len(recs))
	}
}

func TestMovementRepository_AppendValidation(t *testing.T) {
	db := testDB(t)
	movements := inventoryRepo.NewMovementRepository(db)

	bad := &inventoryEntity.StockMovement{
		ProductID:        "P-1",
		Type:             inventoryEntity.MovementIn,
		Quantity:         0,
		PreviousQuantity: 0,
		NewQuantity:      0,
		Reason:           "x",
	}
	if err := movements.Append(db, bad); err == nil {
		t.Error("want error for zero quantity")
	}

	inconsistent := &inventoryEntity.StockMovement{
		ProductID:        "P-1",
		Type:             inventoryEntity.MovementIn,
		Quantity:         5,
		PreviousQuantity: 10,
		NewQuantity:      99,
		Reason:           "x",
	}
	if err := movements.Append(db, inconsistent); err == nil {
		t.Error("want error for prev/new mismatch")
	}
}

func TestMovementRepository_HistoryNewestFirst(t *testing.T) {
	db := testDB(t)
	repo := inventoryRepo.NewRecordRepository(db)
	movements := inventoryRepo.NewMovementRepository(db)
	seedRecord(t, repo, "P-1", 10)
	if _, err := repo.ApplyDelta("P-1", 5, 0, inventoryRepo.DeltaCause{Reason: inventoryEntity.ReasonRestock}); err != nil {
		t.Fatal(err)
	}

	history, err := movements.History("P-1", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].MovementID < history[1].MovementID {
		t.Error("history not newest-first")
	}

	limited, _ := movements.History("P-1", 1)
	if len(limited) != 1 {
		t.Errorf("limited history length = %d, want 1", len(limited))
	}
}
