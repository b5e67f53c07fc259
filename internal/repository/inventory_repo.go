package repository

import (
	"context"

	"go-leather-stock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryFilter narrows ListRecords. Zero values mean "any".
type InventoryFilter struct {
	ItemID     uuid.UUID
	Status     model.StockStatus
	Location   string
	ActiveOnly bool
}

// InventoryRepository methods taking tx run inside the caller's transaction.
type InventoryRepository interface {
	Create(tx *gorm.DB, record *model.InventoryRecord) error
	Save(tx *gorm.DB, record *model.InventoryRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryRecord, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.InventoryRecord, error)
	FindItemID(tx *gorm.DB, id uuid.UUID) (uuid.UUID, error)
	FindActiveAt(tx *gorm.DB, itemID uuid.UUID, location string) (*model.InventoryRecord, error)
	FindByItem(tx *gorm.DB, itemID uuid.UUID, activeOnly bool) ([]model.InventoryRecord, error)
	FindAll(ctx context.Context, filter InventoryFilter) ([]model.InventoryRecord, error)
	HardDelete(tx *gorm.DB, id uuid.UUID) error
}

type inventoryRepo struct {
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db}
}

func (r *inventoryRepo) Create(tx *gorm.DB, record *model.InventoryRecord) error {
	return tx.Omit(clause.Associations).Create(record).Error
}

func (r *inventoryRepo) Save(tx *gorm.DB, record *model.InventoryRecord) error {
	return tx.Omit(clause.Associations).Save(record).Error
}

func (r *inventoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryRecord, error) {
	var record model.InventoryRecord
	if err := r.db.WithContext(ctx).Preload("Item").First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindForUpdate loads and row-locks the record (no-op lock on SQLite).
func (r *inventoryRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.InventoryRecord, error) {
	var record model.InventoryRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&record, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindItemID reads the owning item of a record without locking it.
func (r *inventoryRepo) FindItemID(tx *gorm.DB, id uuid.UUID) (uuid.UUID, error) {
	var record model.InventoryRecord
	if err := tx.Select("id", "item_id").First(&record, "id = ?", id).Error; err != nil {
		return uuid.Nil, err
	}
	return record.ItemID, nil
}

// FindActiveAt returns the active record for itemID at location, or nil.
func (r *inventoryRepo) FindActiveAt(tx *gorm.DB, itemID uuid.UUID, location string) (*model.InventoryRecord, error) {
	var records []model.InventoryRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ? AND is_active = ? AND LOWER(TRIM(storage_location)) = ?", itemID, true, model.NormalizeLocation(location)).
		Order("created_at ASC").
		Limit(1).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (r *inventoryRepo) FindByItem(tx *gorm.DB, itemID uuid.UUID, activeOnly bool) ([]model.InventoryRecord, error) {
	var records []model.InventoryRecord
	q := tx.Where("item_id = ?", itemID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("storage_location ASC").Find(&records).Error
	return records, err
}

func (r *inventoryRepo) FindAll(ctx context.Context, filter InventoryFilter) ([]model.InventoryRecord, error) {
	var records []model.InventoryRecord
	q := r.db.WithContext(ctx).Preload("Item")
	if filter.ItemID != uuid.Nil {
		q = q.Where("item_id = ?", filter.ItemID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Location != "" {
		q = q.Where("LOWER(TRIM(storage_location)) = ?", model.NormalizeLocation(filter.Location))
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("storage_location ASC, created_at ASC").Find(&records).Error
	return records, err
}

// HardDelete removes the record and its transactions. Soft deactivation is a
// Save with IsActive=false.
func (r *inventoryRepo) HardDelete(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("inventory_id = ?", id).Delete(&model.StockTransaction{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Delete(&model.InventoryRecord{}, "id = ?", id).Error
}
