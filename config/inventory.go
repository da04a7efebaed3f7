package config

import (
	"os"
	"strconv"
)

// Inventory behavior defaults. Per-record fields (thresholds, backorder flag)
// override these; env vars override the compiled defaults.
const (
	DefaultReservationTTLMinutes = 15
	DefaultLowStockThreshold     = 10
	DefaultSweepSchedule         = "@every 1m"
	// Retry budget for writers that lose the row race before we give up
	// and surface ConcurrentModificationError.
	DeltaRetryAttempts = 3
)

// ReservationTTLMinutes returns the default hold TTL.
func ReservationTTLMinutes() int {
	return envInt("RESERVATION_TTL_MINUTES", DefaultReservationTTLMinutes)
}

// LowStockThreshold returns the default low-stock threshold for records
// created without an explicit one.
func LowStockThreshold() int {
	return envInt("LOW_STOCK_THRESHOLD", DefaultLowStockThreshold)
}

// SweepSchedule returns the cron spec for the reservation expiry sweep.
func SweepSchedule() string {
	return GetEnv("RESERVATION_SWEEP_SCHEDULE", DefaultSweepSchedule)
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
