package inventory

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"kasuwa.GO/config"
	"kasuwa.GO/core/cache"
	inventoryEntity "kasuwa.GO/model/entity/inventory"
	inventoryRepo "kasuwa.GO/model/repository/inventory"
)

// AlertGate evaluates thresholds after every successful mutation and emits at
// most one alert per status transition. An unchanged status never re-fires —
// the comparison is against the previously persisted status, not the freshly
// derived one.
type AlertGate struct {
	alerts *inventoryRepo.AlertRepository
	redis  *redis.Client
	cache  *cache.Cache
}

func NewAlertGate(alerts *inventoryRepo.AlertRepository, redisClient *redis.Client) *AlertGate {
	return &AlertGate{alerts: alerts, redis: redisClient, cache: cache.GetInstance()}
}

// AlertEvent is the payload published for notification collaborators.
// Delivery and retry are their responsibility, not this core's.
type AlertEvent struct {
	Type      string `json:"type"`
	Severity  string `json:"severity"`
	ProductID string `json:"product_id"`
	Message   string `json:"message"`
	Available int    `json:"available"`
	Status    string `json:"status"`
}

// AfterMutation runs after a committed mutation: invalidates cached
// availability and, on a status transition, emits one alert. Runs outside
// the storage transaction — alerts are derived signals and losing one to a
// crash here is recoverable by the recheck job.
func (g *AlertGate) AfterMutation(res *inventoryRepo.DeltaResult) {
	rec := res.Record
	g.cache.InvalidateTag("product:" + rec.ProductID)

	if res.Movement != nil {
		GetSearchService().IndexMovement(config.RedisCtx(), res.Movement)
	}

	if rec.Status == res.PreviousStatus {
		return
	}

	switch rec.Status {
	case inventoryEntity.StatusOutOfStock, inventoryEntity.StatusLowStock, inventoryEntity.StatusOverstocked:
		g.fire(rec)
	case inventoryEntity.StatusActive:
		// Recovered — close out whatever was open for this product.
		if err := g.alerts.DismissByProduct(rec.ProductID); err != nil {
			log.Printf("[AlertGate] dismiss alerts for product=%s: %v", rec.ProductID, err)
		}
	}
}

func (g *AlertGate) fire(rec *inventoryEntity.InventoryRecord) {
	available := rec.AvailableQuantity()
	event := AlertEvent{
		Type:      alertTypeFor(rec.Status),
		Severity:  SeverityFor(available, rec.LowStockThreshold, rec.Status),
		ProductID: rec.ProductID,
		Available: available,
		Status:    rec.Status,
		Message:   alertMessage(rec, available),
	}

	meta, _ := json.Marshal(map[string]interface{}{
		"available":        available,
		"quantity":         rec.Quantity,
		"reserved":         rec.ReservedQuantity,
		"reorder_point":    rec.ReorderPoint,
		"reorder_quantity": rec.ReorderQuantity,
	})
	row := &inventoryEntity.InventoryAlert{
		ProductID: event.ProductID,
		Type:      event.Type,
		Severity:  event.Severity,
		Message:   event.Message,
		Metadata:  meta,
	}
	if err := g.alerts.Create(row); err != nil {
		log.Printf("[AlertGate] persist alert for product=%s: %v", rec.ProductID, err)
	}

	g.publish(event)
}

// Recheck re-fires alerts for records stuck in an alerting status with no
// open alert row. Safety net for alerts lost between commit and publish.
func (g *AlertGate) Recheck(recs []inventoryEntity.InventoryRecord) int {
	fired := 0
	for i := range recs {
		rec := &recs[i]
		open, err := g.alerts.OpenByProduct(rec.ProductID)
		if err != nil {
			log.Printf("[AlertGate] recheck product=%s: %v", rec.ProductID, err)
			continue
		}
		if len(open) > 0 {
			continue
		}
		g.fire(rec)
		fired++
	}
	return fired
}

func (g *AlertGate) publish(event AlertEvent) {
	if g.redis == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := g.redis.Publish(config.RedisCtx(), config.AlertChannel, payload).Err(); err != nil {
		log.Printf("[AlertGate] publish alert for product=%s: %v", event.ProductID, err)
	}
}

func alertTypeFor(status string) string {
	switch status {
	case inventoryEntity.StatusOutOfStock:
		return inventoryEntity.AlertOutOfStock
	case inventoryEntity.StatusOverstocked:
		return inventoryEntity.AlertOverstocked
	default:
		return inventoryEntity.AlertLowStock
	}
}

// SeverityFor maps the availability position against the threshold to an
// alert severity. OUT_OF_STOCK is always critical.
func SeverityFor(available, threshold int, status string) string {
	switch {
	case status == inventoryEntity.StatusOutOfStock:
		return inventoryEntity.SeverityCritical
	case threshold > 0 && available*2 <= threshold:
		return inventoryEntity.SeverityHigh
	case threshold > 0 && available <= threshold:
		return inventoryEntity.SeverityMedium
	default:
		return inventoryEntity.SeverityLow
	}
}

func alertMessage(rec *inventoryEntity.InventoryRecord, available int) string {
	switch rec.Status {
	case inventoryEntity.StatusOutOfStock:
		return fmt.Sprintf("Product %s is out of stock", rec.ProductID)
	case inventoryEntity.StatusOverstocked:
		return fmt.Sprintf("Product %s is overstocked: %d on hand, max %d", rec.ProductID, rec.Quantity, rec.MaxStockLevel)
	default:
		return fmt.Sprintf("Product %s is low on stock: %d available, threshold %d", rec.ProductID, available, rec.LowStockThreshold)
	}
}
