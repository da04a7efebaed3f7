package modeltest

import (
	"testing"

	inventoryEntity "kasuwa.GO/model/entity/inventory"
	inventoryRepo "kasuwa.GO/model/repository/inventory"
)

func TestAlertRepository_CreateAndOpen(t *testing.T) {
	repo := inventoryRepo.NewAlertRepository(testDB(t))

	a := &inventoryEntity.InventoryAlert{
		ProductID: "P-1",
		Type:      inventoryEntity.AlertLowStock,
		Severity:  inventoryEntity.SeverityHigh,
		Message:   "Product P-1 is low on stock",
	}
	if err := repo.Create(a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.AlertID == 0 {
		t.Error("AlertID not set after Create")
	}

	open, err := repo.Open(0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("open alerts = %d, want 1", len(open))
	}
}

func TestAlertRepository_AcknowledgeAndDismiss(t *testing.T) {
	repo := inventoryRepo.NewAlertRepository(testDB(t))

	a := &inventoryEntity.InventoryAlert{ProductID: "P-1", Type: inventoryEntity.AlertOutOfStock, Severity: inventoryEntity.SeverityCritical}
	if err := repo.Create(a); err != nil {
		t.Fatal(err)
	}

	if err := repo.Acknowledge(a.AlertID); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	// Acknowledged alerts stay open until dismissed.
	open, _ := repo.Open(0)
	if len(open) != 1 || !open[0].IsAcknowledged {
		t.Errorf("open = %+v, want one acknowledged alert", open)
	}

	if err := repo.Dismiss(a.AlertID); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	open, _ = repo.Open(0)
	if len(open) != 0 {
		t.Errorf("open alerts after dismiss = %d, want 0", len(open))
	}

	if err := repo.Acknowledge(99999); err == nil {
		t.Error("want error acknowledging unknown alert")
	}
}

func TestAlertRepository_DismissByProduct(t *testing.T) {
	repo := inventoryRepo.NewAlertRepository(testDB(t))

	for _, p := range []string{"P-1", "P-1", "P-2"} {
		if err := repo.Create(&inventoryEntity.InventoryAlert{ProductID: p, Type: inventoryEntity.AlertLowStock, Severity: inventoryEntity.SeverityMedium}); err != nil {
			t.Fatal(err)
		}
	}

	if err := repo.DismissByProduct("P-1"); err != nil {
		t.Fatalf("DismissByProduct: %v", err)
	}
	open, _ := repo.Open(0)
	if len(open) != 1 || open[0].ProductID != "P-2" {
		t.Errorf("open = %+v, want only P-2", open)
	}
}
