package inventory

import (
	"context"

	inventoryRepo "kasuwa.GO/model/repository/inventory"
)

// ProductCatalog is the contract this core needs from the catalog service:
// a fail-fast existence/activity check before touching stock.
type ProductCatalog interface {
	IsActiveProduct(ctx context.Context, productID string) (bool, error)
}

// UnimplementedCatalog is the default stand-in installed when no real catalog
// client is wired. It is a real value, not an empty cast — callers treat its
// ErrNotImplemented as "check unavailable" and fall back to the inventory
// record existence check.
type UnimplementedCatalog struct{}

func (UnimplementedCatalog) IsActiveProduct(context.Context, string) (bool, error) {
	return false, inventoryRepo.ErrNotImplemented
}

// checkProduct consults the catalog when one is wired. An unimplemented or
// errored catalog degrades to the record-existence check rather than
// blocking sales.
func checkProduct(ctx context.Context, catalog ProductCatalog, productID string) error {
	if catalog == nil {
		return nil
	}
	active, err := catalog.IsActiveProduct(ctx, productID)
	if err != nil {
		return nil
	}
	if !active {
		return inventoryRepo.ErrProductNotFound
	}
	return nil
}
