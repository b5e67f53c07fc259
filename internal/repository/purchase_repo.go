package repository

import (
	"context"
	"errors"

	"go-leather-stock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	FindAll(ctx context.Context, status model.PurchaseStatus) ([]model.Purchase, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Purchase, error)
	// Save writes the purchase header and its lines inside tx.
	Save(tx *gorm.DB, purchase *model.Purchase) error
	// UpdateStatus writes the status fields only while the stored status is
	// one of from, and returns ErrStatusChanged otherwise.
	UpdateStatus(tx *gorm.DB, purchase *model.Purchase, from ...model.PurchaseStatus) error
}

var ErrStatusChanged = errors.New("purchase status changed concurrently")

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

func (r *purchaseRepo) Create(ctx context.Context, purchase *model.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepo) FindAll(ctx context.Context, status model.PurchaseStatus) ([]model.Purchase, error) {
	var purchases []model.Purchase
	q := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := r.db.WithContext(ctx).Preload("Items.Item").First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&purchase, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if err := tx.Where("purchase_id = ?", id).Order("id ASC").Find(&purchase.Items).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepo) Save(tx *gorm.DB, purchase *model.Purchase) error {
	if err := tx.Omit(clause.Associations).Save(purchase).Error; err != nil {
		return err
	}
	for i := range purchase.Items {
		if err := tx.Omit(clause.Associations).Save(&purchase.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *purchaseRepo) UpdateStatus(tx *gorm.DB, purchase *model.Purchase, from ...model.PurchaseStatus) error {
	res := tx.Model(&model.Purchase{}).
		Where("id = ? AND status IN ?", purchase.ID, from).
		Updates(map[string]interface{}{
			"status":       purchase.Status,
			"ordered_at":   purchase.OrderedAt,
			"delivered_at": purchase.DeliveredAt,
			"updated_by":   purchase.UpdatedBy,
			"updated_at":   purchase.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}
