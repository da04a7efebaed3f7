package inventory

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"kasuwa.GO/api"
	inventoryRepo "kasuwa.GO/model/repository/inventory"
	inventoryService "kasuwa.GO/service/inventory"
)

func init() {
	api.RegisterModule(RegisterInventoryRoutes)
}

// Singleton service (created once per DB).
var (
	serviceInstance *inventoryService.InventoryService
	serviceOnce     sync.Once
)

func getService(db *gorm.DB) *inventoryService.InventoryService {
	serviceOnce.Do(func() {
		serviceInstance = inventoryService.NewInventoryService(db, nil, nil)
	})
	return serviceInstance
}

// SetService overrides the singleton. Call before ApplyModules; main wires
// the redis-enabled instance here so routes share it with cron jobs.
func SetService(svc *inventoryService.InventoryService) {
	serviceOnce.Do(func() {})
	serviceInstance = svc
}

// httpError maps the typed inventory errors onto HTTP statuses.
func httpError(c echo.Context, err error) error {
	var insufficient *inventoryRepo.InsufficientStockError
	var negative *inventoryRepo.NegativeStockError
	var conflict *inventoryRepo.ConcurrentModificationError

	switch {
	case errors.Is(err, inventoryService.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, inventoryRepo.ErrProductNotFound),
		errors.Is(err, inventoryRepo.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.As(err, &insufficient):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     err.Error(),
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		})
	case errors.As(err, &negative):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, inventoryRepo.ErrReservationReleased):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
}

func RegisterInventoryRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc := getService(db)
	g := apiGroup.Group("/inventory")

	// GET /api/inventory/:productId
	g.GET("/:productId", func(c echo.Context) error {
		rec, err := svc.Get(c.Param("productId"))
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	})

	// GET /api/inventory/:productId/history?limit=50
	g.GET("/:productId/history", func(c echo.Context) error {
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		movements, err := svc.History(c.Param("productId"), limit)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"items": movements, "count": len(movements)})
	})

	// GET /api/inventory/:productId/ledger-check
	g.GET("/:productId/ledger-check", func(c echo.Context) error {
		replayed, current, err := svc.VerifyLedger(c.Param("productId"))
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"replayed_quantity": replayed,
			"current_quantity":  current,
			"consistent":        replayed == current,
		})
	})

	// GET /api/inventory/:productId/reservations
	g.GET("/:productId/reservations", func(c echo.Context) error {
		holds, err := svc.ActiveReservations(c.Param("productId"))
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"items": holds, "count": len(holds)})
	})

	// PUT /api/inventory/:productId/thresholds
	g.PUT("/:productId/thresholds", func(c echo.Context) error {
		var body struct {
			LowStockThreshold int `json:"low_stock_threshold"`
			ReorderPoint      int `json:"reorder_point"`
			ReorderQuantity   int `json:"reorder_quantity"`
			MaxStockLevel     int `json:"max_stock_level"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		rec, err := svc.UpdateThresholds(c.Param("productId"), body.LowStockThreshold, body.ReorderPoint, body.ReorderQuantity, body.MaxStockLevel)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	})

	// PUT /api/inventory/:productId/status {"status":"DISCONTINUED"}
	g.PUT("/:productId/status", func(c echo.Context) error {
		var body struct {
			Status string `json:"status"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		rec, err := svc.SetLifecycleStatus(c.Param("productId"), body.Status)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	})

	// POST /api/inventory/reserve
	g.POST("/reserve", func(c echo.Context) error {
		var body struct {
			ProductID  string `json:"product_id"`
			Quantity   int    `json:"quantity"`
			OrderID    string `json:"order_id"`
			CartID     string `json:"cart_id"`
			Reason     string `json:"reason"`
			TTLMinutes int    `json:"ttl_minutes"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		owner := inventoryService.OwnerRef{}
		switch {
		case body.OrderID != "":
			owner = inventoryService.OwnerRef{Type: "order", ID: body.OrderID}
		case body.CartID != "":
			owner = inventoryService.OwnerRef{Type: "cart", ID: body.CartID}
		}
		res, err := svc.Reservations().Reserve(c.Request().Context(), body.ProductID, body.Quantity, owner, body.Reason, body.TTLMinutes)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusCreated, res)
	})

	// POST /api/inventory/release
	g.POST("/release", func(c echo.Context) error {
		var body struct {
			ReservationID string `json:"reservation_id"`
			Reason        string `json:"reason"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.ReservationID == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id is required"})
		}
		released, err := svc.Reservations().Release(body.ReservationID, body.Reason)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"released_quantity": released})
	})

	// POST /api/inventory/release-by-owner {"owner_type":"cart","owner_id":"...","reason":"cart_cleared"}
	g.POST("/release-by-owner", func(c echo.Context) error {
		var body struct {
			OwnerType string `json:"owner_type"`
			OwnerID   string `json:"owner_id"`
			Reason    string `json:"reason"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.OwnerType == "" || body.OwnerID == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "owner_type and owner_id are required"})
		}
		released, err := svc.Reservations().ReleaseByOwner(inventoryService.OwnerRef{Type: body.OwnerType, ID: body.OwnerID}, body.Reason)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"released_count": released})
	})

	// POST /api/inventory/extend {"reservation_id":"...","extra_minutes":10}
	g.POST("/extend", func(c echo.Context) error {
		var body struct {
			ReservationID string `json:"reservation_id"`
			ExtraMinutes  int    `json:"extra_minutes"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		res, err := svc.Reservations().Extend(body.ReservationID, body.ExtraMinutes)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, res)
	})

	// POST /api/inventory/adjust
	g.POST("/adjust", func(c echo.Context) error {
		var adj inventoryService.Adjustment
		if err := c.Bind(&adj); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		rec, err := svc.Adjustments().Adjust(c.Request().Context(), adj)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	})

	// POST /api/inventory/adjust/bulk
	g.POST("/adjust/bulk", func(c echo.Context) error {
		var body struct {
			Items []inventoryService.Adjustment `json:"items"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if len(body.Items) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "items array is required and must not be empty"})
		}
		res := svc.Adjustments().BulkAdjust(c.Request().Context(), body.Items)
		return c.JSON(http.StatusOK, res)
	})

	// POST /api/inventory/import – bulk stock upsert
	g.POST("/import", func(c echo.Context) error {
		start := time.Now()

		var body struct {
			Items     []inventoryService.ImportItem `json:"items"`
			CreatedBy string                        `json:"created_by"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if len(body.Items) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "items array is required and must not be empty"})
		}

		res, err := svc.ImportStock(c.Request().Context(), body.Items, body.CreatedBy)
		duration := time.Since(start).Milliseconds()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error(), "request_duration_ms": duration})
		}

		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		return c.JSON(http.StatusOK, echo.Map{
			"imported":            res.Imported,
			"skipped":             res.Skipped,
			"warnings":            res.Warnings,
			"request_duration_ms": duration,
		})
	})

	// GET /api/inventory/alerts?limit=100
	g.GET("/alerts", func(c echo.Context) error {
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		alerts, err := svc.LowStockAlerts(limit)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"items": alerts, "count": len(alerts)})
	})

	// POST /api/inventory/alerts/:alertId/acknowledge
	g.POST("/alerts/:alertId/acknowledge", func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Param("alertId"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid alert id"})
		}
		if err := svc.AcknowledgeAlert(uint(id)); err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"acknowledged": true})
	})

	// POST /api/inventory/alerts/:alertId/dismiss
	g.POST("/alerts/:alertId/dismiss", func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Param("alertId"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid alert id"})
		}
		if err := svc.DismissAlert(uint(id)); err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"dismissed": true})
	})

	// GET /api/inventory/reorder-suggestions
	g.GET("/reorder-suggestions", func(c echo.Context) error {
		suggestions, err := svc.ReorderSuggestions()
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"items": suggestions, "count": len(suggestions)})
	})

	// GET /api/inventory/movements/search – audit queries via Elasticsearch
	g.GET("/movements/search", func(c echo.Context) error {
		size, _ := strconv.Atoi(c.QueryParam("size"))
		page, _ := strconv.Atoi(c.QueryParam("page"))
		query := inventoryService.MovementQuery{
			ProductID:     c.QueryParam("product_id"),
			MovementType:  c.QueryParam("movement_type"),
			Reason:        c.QueryParam("reason"),
			ReferenceType: c.QueryParam("reference_type"),
			ReferenceID:   c.QueryParam("reference_id"),
			Text:          c.QueryParam("q"),
			Size:          size,
			Page:          page,
		}
		if from := c.QueryParam("from"); from != "" {
			if t, err := time.Parse(time.RFC3339, from); err == nil {
				query.From = &t
			}
		}
		if to := c.QueryParam("to"); to != "" {
			if t, err := time.Parse(time.RFC3339, to); err == nil {
				query.To = &t
			}
		}
		docs, total, err := inventoryService.GetSearchService().Search(c.Request().Context(), query)
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"items": docs, "total": total})
	})
}
