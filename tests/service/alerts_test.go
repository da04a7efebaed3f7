package servicetest

import (
	"context"
	"testing"

	inventoryEntity "kasuwa.GO/model/entity/inventory"
	inventoryService "kasuwa.GO/service/inventory"
)

func adjustTo(t *testing.T, svc *inventoryService.InventoryService, productID string, qty int) {
	t.Helper()
	if _, err := svc.Adjustments().Adjust(context.Background(), inventoryService.Adjustment{
		ProductID: productID,
		Type:      inventoryService.AdjustSet,
		Quantity:  qty,
		Reason:    inventoryEntity.ReasonCorrection,
	}); err != nil {
		t.Fatalf("adjust %s to %d: %v", productID, qty, err)
	}
}

func openAlerts(t *testing.T, svc *inventoryService.InventoryService, productID string) []inventoryEntity.InventoryAlert {
	t.Helper()
	all, err := svc.LowStockAlerts(100)
	if err != nil {
		t.Fatal(err)
	}
	var got []inventoryEntity.InventoryAlert
	for _, a := range all {
		if a.ProductID == productID {
			got = append(got, a)
		}
	}
	return got
}

func TestAlertGate_FiresOncePerTransition(t *testing.T) {
	svc, _ := newTestService(t)
	res, err := svc.ImportStock(context.Background(), []inventoryService.ImportItem{
		{ProductID: "P-1", Quantity: 100, LowStockThreshold: 10},
	}, "test")
	if err != nil || res.Imported != 1 {
		t.Fatal(err)
	}

	// ACTIVE -> LOW_STOCK fires one alert.
	adjustTo(t, svc, "P-1", 8)
	alerts := openAlerts(t, svc, "P-1")
	if len(alerts) != 1 || alerts[0].Type != inventoryEntity.AlertLowStock {
		t.Fatalf("alerts after drop = %+v, want one low stock alert", alerts)
	}

	// Still LOW_STOCK: same status, nothing new fires.
	adjustTo(t, svc, "P-1", 6)
	if got := openAlerts(t, svc, "P-1"); len(got) != 1 {
		t.Errorf("alerts after further drop = %d, want still 1", len(got))
	}

	// LOW_STOCK -> OUT_OF_STOCK is a new transition.
	adjustTo(t, svc, "P-1", 0)
	alerts = openAlerts(t, svc, "P-1")
	if len(alerts) != 2 {
		t.Fatalf("alerts after stockout = %d, want 2", len(alerts))
	}
	latest := alerts[0]
	if latest.Type != inventoryEntity.AlertOutOfStock || latest.Severity != inventoryEntity.SeverityCritical {
		t.Errorf("latest alert = %s/%s, want out of stock / critical", latest.Type, latest.Severity)
	}

	// Recovery dismisses everything open for the product.
	adjustTo(t, svc, "P-1", 100)
	if got := openAlerts(t, svc, "P-1"); len(got) != 0 {
		t.Errorf("alerts after recovery = %d, want 0", len(got))
	}
}

func TestAlertGate_AcknowledgeKeepsOpen(t *testing.T) {
	svc, _ := newTestService(t)
	seedProduct(t, svc, "P-1", 100)
	adjustTo(t, svc, "P-1", 0)

	alerts := openAlerts(t, svc, "P-1")
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	if err := svc.AcknowledgeAlert(alerts[0].AlertID); err != nil {
		t.Fatal(err)
	}
	alerts = openAlerts(t, svc, "P-1")
	if len(alerts) != 1 || !alerts[0].IsAcknowledged {
		t.Errorf("alerts = %+v, want one acknowledged and still open", alerts)
	}

	if err := svc.DismissAlert(alerts[0].AlertID); err != nil {
		t.Fatal(err)
	}
	if got := openAlerts(t, svc, "P-1"); len(got) != 0 {
		t.Errorf("alerts after dismiss = %d, want 0", len(got))
	}
}

func TestRecheckAlerts_RefiresMissing(t *testing.T) {
	svc, _ := newTestService(t)
	seedProduct(t, svc, "P-1", 100)
	adjustTo(t, svc, "P-1", 0)

	alerts := openAlerts(t, svc, "P-1")
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	// Simulate a lost alert: dismiss it while the record stays OUT_OF_STOCK.
	if err := svc.DismissAlert(alerts[0].AlertID); err != nil {
		t.Fatal(err)
	}

	fired, err := svc.RecheckAlerts()
	if err != nil {
		t.Fatalf("RecheckAlerts: %v", err)
	}
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
	if got := openAlerts(t, svc, "P-1"); len(got) != 1 {
		t.Errorf("alerts after recheck = %d, want 1", len(got))
	}

	// A second run finds the open alert and does nothing.
	fired, err = svc.RecheckAlerts()
	if err != nil || fired != 0 {
		t.Errorf("second recheck fired = %d, %v, want 0, nil", fired, err)
	}
}

func TestSeverityFor(t *testing.T) {
	cases := []struct {
		name      string
		available int
		threshold int
		status    string
		want      string
	}{
		{"out of stock is critical", 0, 10, inventoryEntity.StatusOutOfStock, inventoryEntity.SeverityCritical},
		{"at half threshold is high", 5, 10, inventoryEntity.StatusLowStock, inventoryEntity.SeverityHigh},
		{"below half threshold is high", 3, 10, inventoryEntity.StatusLowStock, inventoryEntity.SeverityHigh},
		{"at threshold is medium", 10, 10, inventoryEntity.StatusLowStock, inventoryEntity.SeverityMedium},
		{"above threshold is low", 50, 10, inventoryEntity.StatusOverstocked, inventoryEntity.SeverityLow},
		{"disabled threshold is low", 2, 0, inventoryEntity.StatusActive, inventoryEntity.SeverityLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := inventoryService.SeverityFor(tc.available, tc.threshold, tc.status); got != tc.want {
				t.Errorf("SeverityFor(%d, %d, %s) = %s, want %s", tc.available, tc.threshold, tc.status, got, tc.want)
			}
		})
	}
}
