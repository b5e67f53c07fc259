package repository

import (
	"context"

	"go-leather-stock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	FindAll(ctx context.Context, kind model.ItemKind) ([]model.Item, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	FindBySKU(ctx context.Context, sku string) (*model.Item, error)
	Update(ctx context.Context, item *model.Item) error
	// FindByIDTx reads the item inside a running transaction.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Item, error)
	// FindForUpdate row-locks the item. Creating an inventory record for an
	// item happens under this lock.
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Item, error)
	UpdateStatus(tx *gorm.DB, id uuid.UUID, status model.StockStatus) error
}

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db}
}

func (r *itemRepo) Create(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepo) FindAll(ctx context.Context, kind model.ItemKind) ([]model.Item, error) {
	var items []model.Item
	q := r.db.WithContext(ctx).Order("name ASC")
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *itemRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *itemRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	if err := tx.First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Item, error) {
	return r.FindByIDTx(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *itemRepo) FindBySKU(ctx context.Context, sku string) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).First(&item, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) Update(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Omit("Inventory").Save(item).Error
}

func (r *itemRepo) UpdateStatus(tx *gorm.DB, id uuid.UUID, status model.StockStatus) error {
	return tx.Model(&model.Item{}).
		Where("id = ?", id).
		Update("status", status).Error
}
