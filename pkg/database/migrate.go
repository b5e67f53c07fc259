package database

import (
	"fmt"

	"go-leather-stock/internal/model"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Privilege{},
		&model.Role{},
		&model.User{},
		&model.Item{},
		&model.InventoryRecord{},
		&model.StockTransaction{},
		&model.Purchase{},
		&model.PurchaseItem{},
	)
	if err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	if err := db.Exec(activeLocationIndex).Error; err != nil {
		return fmt.Errorf("creating active location index: %w", err)
	}
	return nil
}

// activeLocationIndex allows one active record per item and storage
// location. Locations compare trimmed and case-insensitive.
const activeLocationIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_records_active_location
	ON inventory_records (item_id, LOWER(TRIM(storage_location)))
	WHERE is_active AND deleted_at IS NULL`
