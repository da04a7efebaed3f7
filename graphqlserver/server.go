package graphqlserver

import (
	"context"
	"encoding/json"
	"time"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"gorm.io/gorm"

	"kasuwa.GO/graphql"
	gqlmodels "kasuwa.GO/graphql/models"
	"kasuwa.GO/graphql/registry"
	inventoryEntity "kasuwa.GO/model/entity/inventory"
	inventoryService "kasuwa.GO/service/inventory"
)

// RootResolver is the root for graphql-go. Read-only queries over the
// inventory core; mutations go through the REST API.
type RootResolver struct {
	DB *gorm.DB
}

// Query returns the query resolver.
func (r *RootResolver) Query() *QueryResolver {
	return &QueryResolver{svc: inventoryService.NewInventoryService(r.DB, nil, nil)}
}

// QueryResolver implements Query fields.
type QueryResolver struct {
	svc *inventoryService.InventoryService
}

type inventoryArgs struct {
	ProductID string
}

func (r *QueryResolver) Inventory(ctx context.Context, args inventoryArgs) (*gqlmodels.InventoryRecord, error) {
	rec, err := r.svc.Get(args.ProductID)
	if err != nil {
		return nil, nil // absent, not an error, matches REST 404 semantics
	}
	return recordToModel(rec), nil
}

type movementsArgs struct {
	ProductID string
	Limit     int32
}

func (r *QueryResolver) Movements(ctx context.Context, args movementsArgs) ([]*gqlmodels.StockMovement, error) {
	movements, err := r.svc.History(args.ProductID, int(args.Limit))
	if err != nil {
		return []*gqlmodels.StockMovement{}, nil
	}
	out := make([]*gqlmodels.StockMovement, 0, len(movements))
	for i := range movements {
		out = append(out, movementToModel(&movements[i]))
	}
	return out, nil
}

type reservationsArgs struct {
	ProductID string
}

func (r *QueryResolver) Reservations(ctx context.Context, args reservationsArgs) ([]*gqlmodels.StockReservation, error) {
	holds, err := r.svc.ActiveReservations(args.ProductID)
	if err != nil {
		return []*gqlmodels.StockReservation{}, nil
	}
	out := make([]*gqlmodels.StockReservation, 0, len(holds))
	for i := range holds {
		out = append(out, reservationToModel(&holds[i]))
	}
	return out, nil
}

type availabilityArgs struct {
	ProductIDs []string
}

func (r *QueryResolver) Availability(ctx context.Context, args availabilityArgs) ([]*gqlmodels.Availability, error) {
	out := make([]*gqlmodels.Availability, 0, len(args.ProductIDs))
	for _, id := range args.ProductIDs {
		rec, err := r.svc.Get(id)
		if err != nil {
			continue
		}
		out = append(out, &gqlmodels.Availability{
			ProductID: rec.ProductID,
			Available: int32(rec.AvailableQuantity()),
			Status:    rec.Status,
			Sellable:  rec.Sellable(),
		})
	}
	return out, nil
}

type lowStockAlertsArgs struct {
	Limit int32
}

func (r *QueryResolver) LowStockAlerts(ctx context.Context, args lowStockAlertsArgs) ([]*gqlmodels.InventoryAlert, error) {
	alerts, err := r.svc.LowStockAlerts(int(args.Limit))
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.InventoryAlert, 0, len(alerts))
	for i := range alerts {
		out = append(out, alertToModel(&alerts[i]))
	}
	return out, nil
}

func (r *QueryResolver) ReorderSuggestions(ctx context.Context) ([]*gqlmodels.ReorderSuggestion, error) {
	suggestions, err := r.svc.ReorderSuggestions()
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.ReorderSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, &gqlmodels.ReorderSuggestion{
			ProductID:       s.ProductID,
			Available:       int32(s.Available),
			ReorderPoint:    int32(s.ReorderPoint),
			ReorderQuantity: int32(s.ReorderQuantity),
		})
	}
	return out, nil
}

// ExtensionArgs for _extension(name, args).
type ExtensionArgs struct {
	Name string
	Args *string
}

func (r *QueryResolver) Extension(ctx context.Context, args ExtensionArgs) (*string, error) {
	var m map[string]interface{}
	if args.Args != nil && *args.Args != "" {
		_ = json.Unmarshal([]byte(*args.Args), &m)
	}
	if m == nil {
		m = make(map[string]interface{})
	}
	out, err := registry.Resolve(ctx, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// --- entity to view model mappers ---

func recordToModel(rec *inventoryEntity.InventoryRecord) *gqlmodels.InventoryRecord {
	return &gqlmodels.InventoryRecord{
		ProductID:         rec.ProductID,
		Quantity:          int32(rec.Quantity),
		ReservedQuantity:  int32(rec.ReservedQuantity),
		AvailableQuantity: int32(rec.AvailableQuantity()),
		LowStockThreshold: int32(rec.LowStockThreshold),
		ReorderPoint:      int32(rec.ReorderPoint),
		ReorderQuantity:   int32(rec.ReorderQuantity),
		MaxStockLevel:     int32(rec.MaxStockLevel),
		Status:            rec.Status,
		AllowBackorder:    rec.AllowBackorder,
		BackorderLimit:    int32(rec.BackorderLimit),
		UpdatedAt:         rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func movementToModel(m *inventoryEntity.StockMovement) *gqlmodels.StockMovement {
	return &gqlmodels.StockMovement{
		MovementID:       int32(m.MovementID),
		ProductID:        m.ProductID,
		MovementType:     m.Type,
		Quantity:         int32(m.Quantity),
		PreviousQuantity: int32(m.PreviousQuantity),
		NewQuantity:      int32(m.NewQuantity),
		Reason:           m.Reason,
		ReferenceType:    optional(m.ReferenceType),
		ReferenceID:      optional(m.ReferenceID),
		CreatedBy:        optional(m.CreatedBy),
		CreatedAt:        m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func reservationToModel(r *inventoryEntity.StockReservation) *gqlmodels.StockReservation {
	ownerType, ownerID := r.OwnerRef()
	return &gqlmodels.StockReservation{
		ReservationID: r.ReservationID,
		ProductID:     r.ProductID,
		Quantity:      int32(r.Quantity),
		OwnerType:     ownerType,
		OwnerID:       ownerID,
		ExpiresAt:     r.ExpiresAt.UTC().Format(time.RFC3339),
		IsReleased:    r.IsReleased,
		ReleaseReason: optional(r.ReleaseReason),
	}
}

func alertToModel(a *inventoryEntity.InventoryAlert) *gqlmodels.InventoryAlert {
	return &gqlmodels.InventoryAlert{
		AlertID:        int32(a.AlertID),
		ProductID:      a.ProductID,
		Type:           a.Type,
		Severity:       a.Severity,
		Message:        a.Message,
		IsAcknowledged: a.IsAcknowledged,
		CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NewSchema parses the schema and returns a graphql-go Schema.
func NewSchema(db *gorm.DB) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), &RootResolver{DB: db}, gql.UseFieldResolvers())
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}
