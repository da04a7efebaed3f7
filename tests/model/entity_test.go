package modeltest

import (
	"testing"
	"time"

	inventoryEntity "kasuwa.GO/model/entity/inventory"
)

func TestComputeAvailability(t *testing.T) {
	cases := []struct {
		name       string
		qty        int
		reserved   int
		threshold  int
		maxLevel   int
		wantAvail  int
		wantStatus string
	}{
		{"plenty", 100, 10, 10, 0, 90, inventoryEntity.StatusActive},
		{"at threshold", 15, 5, 10, 0, 10, inventoryEntity.StatusLowStock},
		{"below threshold", 8, 0, 10, 0, 8, inventoryEntity.StatusLowStock},
		{"fully reserved", 10, 10, 10, 0, 0, inventoryEntity.StatusOutOfStock},
		{"zero stock", 0, 0, 10, 0, 0, inventoryEntity.StatusOutOfStock},
		{"backordered", -5, 0, 10, 0, -5, inventoryEntity.StatusOutOfStock},
		{"overstocked", 200, 10, 10, 150, 190, inventoryEntity.StatusOverstocked},
		{"out of stock beats overstocked", 200, 200, 10, 150, 0, inventoryEntity.StatusOutOfStock},
		{"low stock beats overstocked", 200, 195, 10, 150, 5, inventoryEntity.StatusLowStock},
		{"threshold off", 1, 0, 0, 0, 1, inventoryEntity.StatusActive},
		{"max level off", 1000, 0, 10, 0, 1000, inventoryEntity.StatusActive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			avail, status := inventoryEntity.ComputeAvailability(tc.qty, tc.reserved, tc.threshold, tc.maxLevel)
			if avail != tc.wantAvail || status != tc.wantStatus {
				t.Errorf("ComputeAvailability(%d, %d, %d, %d) = (%d, %s), want (%d, %s)",
					tc.qty, tc.reserved, tc.threshold, tc.maxLevel, avail, status, tc.wantAvail, tc.wantStatus)
			}
		})
	}
}

func TestNextStatus_StickyStates(t *testing.T) {
	rec := &inventoryEntity.InventoryRecord{
		Quantity:          100,
		ReservedQuantity:  0,
		LowStockThreshold: 10,
		Status:            inventoryEntity.StatusDiscontinued,
	}
	if got := inventoryEntity.NextStatus(rec); got != inventoryEntity.StatusDiscontinued {
		t.Errorf("NextStatus = %q, want DISCONTINUED preserved", got)
	}

	rec.Status = inventoryEntity.StatusInactive
	if got := inventoryEntity.NextStatus(rec); got != inventoryEntity.StatusInactive {
		t.Errorf("NextStatus = %q, want INACTIVE preserved", got)
	}

	rec.Status = inventoryEntity.StatusLowStock
	if got := inventoryEntity.NextStatus(rec); got != inventoryEntity.StatusActive {
		t.Errorf("NextStatus = %q, want ACTIVE recomputed", got)
	}
}

func TestInventoryRecord_Sellable(t *testing.T) {
	rec := &inventoryEntity.InventoryRecord{Status: inventoryEntity.StatusOutOfStock}
	if !rec.Sellable() {
		t.Error("OUT_OF_STOCK should still be sellable (backorder may apply)")
	}
	rec.Status = inventoryEntity.StatusDiscontinued
	if rec.Sellable() {
		t.Error("DISCONTINUED must not be sellable")
	}
}

func TestStockMovement_SignedEffect(t *testing.T) {
	in := &inventoryEntity.StockMovement{Type: inventoryEntity.MovementIn, Quantity: 7}
	out := &inventoryEntity.StockMovement{Type: inventoryEntity.MovementOut, Quantity: 7}
	adj := &inventoryEntity.StockMovement{Type: inventoryEntity.MovementAdjustment, Quantity: 7, PreviousQuantity: 10, NewQuantity: 3}

	if in.SignedEffect() != 7 {
		t.Errorf("IN effect = %d, want 7", in.SignedEffect())
	}
	if out.SignedEffect() != -7 {
		t.Errorf("OUT effect = %d, want -7", out.SignedEffect())
	}
	if adj.SignedEffect() != -7 {
		t.Errorf("ADJUSTMENT effect = %d, want -7 (new minus previous)", adj.SignedEffect())
	}
}

func TestStockReservation_ActiveExpired(t *testing.T) {
	now := time.Now().UTC()
	hold := &inventoryEntity.StockReservation{ExpiresAt: now.Add(time.Minute)}

	if !hold.Active(now) || hold.Expired(now) {
		t.Error("hold before expiry should be active")
	}

	later := now.Add(2 * time.Minute)
	if hold.Active(later) || !hold.Expired(later) {
		t.Error("hold after expiry should be expired")
	}

	hold.IsReleased = true
	if hold.Active(now) || hold.Expired(later) {
		t.Error("released hold is neither active nor expired")
	}
}
