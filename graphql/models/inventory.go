package models

// GraphQL view models. Int fields are int32 for graphql-go; timestamps are
// RFC3339 strings.

type InventoryRecord struct {
	ProductID         string
	Quantity          int32
	ReservedQuantity  int32
	AvailableQuantity int32
	LowStockThreshold int32
	ReorderPoint      int32
	ReorderQuantity   int32
	MaxStockLevel     int32
	Status            string
	AllowBackorder    bool
	BackorderLimit    int32
	UpdatedAt         string
}

type StockMovement struct {
	MovementID       int32
	ProductID        string
	MovementType     string
	Quantity         int32
	PreviousQuantity int32
	NewQuantity      int32
	Reason           string
	ReferenceType    *string
	ReferenceID      *string
	CreatedBy        *string
	CreatedAt        string
}

type StockReservation struct {
	ReservationID string
	ProductID     string
	Quantity      int32
	OwnerType     string
	OwnerID       string
	ExpiresAt     string
	IsReleased    bool
	ReleaseReason *string
}

type Availability struct {
	ProductID string
	Available int32
	Status    string
	Sellable  bool
}

type InventoryAlert struct {
	AlertID        int32
	ProductID      string
	Type           string
	Severity       string
	Message        string
	IsAcknowledged bool
	CreatedAt      string
}

type ReorderSuggestion struct {
	ProductID       string
	Available       int32
	ReorderPoint    int32
	ReorderQuantity int32
}
