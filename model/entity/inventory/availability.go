package inventory

// ComputeAvailability derives available quantity and stock status from raw
// counters. Pure — no clock, no database — so status rules are unit-testable
// in isolation. Precedence: OUT_OF_STOCK > LOW_STOCK > OVERSTOCKED > ACTIVE.
// maxStockLevel <= 0 disables the OVERSTOCKED rule.
func ComputeAvailability(quantity, reserved, lowStockThreshold, maxStockLevel int) (available int, status string) {
	available = quantity - reserved
	switch {
	case available <= 0:
		return available, StatusOutOfStock
	case lowStockThreshold > 0 && available <= lowStockThreshold:
		return available, StatusLowStock
	case maxStockLevel > 0 && quantity > maxStockLevel:
		return available, StatusOverstocked
	default:
		return available, StatusActive
	}
}

// NextStatus recomputes a record's status, preserving the sticky admin states.
func NextStatus(rec *InventoryRecord) string {
	if rec.Status == StatusDiscontinued || rec.Status == StatusInactive {
		return rec.Status
	}
	_, status := ComputeAvailability(rec.Quantity, rec.ReservedQuantity, rec.LowStockThreshold, rec.MaxStockLevel)
	return status
}
