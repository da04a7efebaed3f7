package inventory

import (
	"errors"

	"gorm.io/gorm"

	inventoryEntity "kasuwa.GO/model/entity/inventory"
)

// AlertRepository persists alert rows. Alerts are derived signals — the table
// only exists so acknowledge/dismiss survive restarts.
type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(alert *inventoryEntity.InventoryAlert) error {
	return r.db.Create(alert).Error
}

// Open returns undismissed alerts, newest first.
func (r *AlertRepository) Open(limit int) ([]inventoryEntity.InventoryAlert, error) {
	if limit <= 0 {
		limit = 100
	}
	var alerts []inventoryEntity.InventoryAlert
	err := r.db.
		Where("is_dismissed = ?", false).
		Order("alert_id DESC").
		Limit(limit).
		Find(&alerts).Error
	return alerts, err
}

// OpenByProduct returns undismissed alerts for one product.
func (r *AlertRepository) OpenByProduct(productID string) ([]inventoryEntity.InventoryAlert, error) {
	var alerts []inventoryEntity.InventoryAlert
	err := r.db.
		Where("product_id = ? AND is_dismissed = ?", productID, false).
		Order("alert_id DESC").
		Find(&alerts).Error
	return alerts, err
}

func (r *AlertRepository) Acknowledge(alertID uint) error {
	return r.setFlag(alertID, "is_acknowledged")
}

func (r *AlertRepository) Dismiss(alertID uint) error {
	return r.setFlag(alertID, "is_dismissed")
}

func (r *AlertRepository) setFlag(alertID uint, column string) error {
	upd := r.db.Model(&inventoryEntity.InventoryAlert{}).
		Where("alert_id = ?", alertID).
		Update(column, true)
	if upd.Error != nil {
		return upd.Error
	}
	if upd.RowsAffected == 0 {
		return errors.New("alert not found")
	}
	return nil
}

// DismissByProduct closes all open alerts for a product. The gate calls this
// when status recovers so stale alerts don't linger in the admin list.
func (r *AlertRepository) DismissByProduct(productID string) error {
	return r.db.Model(&inventoryEntity.InventoryAlert{}).
		Where("product_id = ? AND is_dismissed = ?", productID, false).
		Update("is_dismissed", true).Error
}
