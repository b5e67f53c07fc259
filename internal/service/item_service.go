package service

import (
	"context"
	"errors"
	"strings"

	"go-leather-stock/internal/model"
	"go-leather-stock/internal/repository"
	"go-leather-stock/pkg/apperror"
	"go-leather-stock/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ItemService interface {
	CreateItem(ctx context.Context, in ItemInput, actor string) (*model.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*model.Item, error)
	ListItems(ctx context.Context, kind model.ItemKind) ([]model.Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, in ItemInput, actor string) (*model.Item, error)
}

type ItemInput struct {
	SKU           string              `json:"sku"`
	Name          string              `json:"name"`
	Kind          model.ItemKind      `json:"kind"`
	Unit          string              `json:"unit"`
	MinStockLevel decimal.NullDecimal `json:"min_stock_level"`
	IsActive      *bool               `json:"is_active"`
}

type itemService struct {
	items    repository.ItemRepository
	records  repository.InventoryRepository
	db       *gorm.DB
	fallback decimal.Decimal
	log      *zap.Logger
}

func NewItemService(db *gorm.DB, items repository.ItemRepository, records repository.InventoryRepository, fallback decimal.Decimal, log *zap.Logger) ItemService {
	return &itemService{
		items:    items,
		records:  records,
		db:       db,
		fallback: fallback,
		log:      log.Named("items"),
	}
}

func (s *itemService) CreateItem(ctx context.Context, in ItemInput, actor string) (*model.Item, error) {
	const op = "items.create"

	item := &model.Item{
		SKU:           normalizeSKU(in.SKU),
		Name:          strings.TrimSpace(in.Name),
		Kind:          model.ItemKind(strings.ToUpper(string(in.Kind))),
		Unit:          strings.TrimSpace(in.Unit),
		MinStockLevel: in.MinStockLevel,
		Status:        model.StatusOutOfStock,
		IsActive:      true,
	}
	if in.IsActive != nil {
		item.IsActive = *in.IsActive
	}
	if err := s.check(op, item); err != nil {
		return nil, err
	}

	existing, err := s.items.FindBySKU(ctx, item.SKU)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, failed(s.log, op, err)
	}
	if existing != nil {
		return nil, apperror.Conflict(op, "SKU %s already exists", item.SKU)
	}

	item.CreatedBy = actor
	item.UpdatedBy = actor
	if err := s.items.Create(ctx, item); err != nil {
		return nil, failed(s.log, op, err)
	}
	s.log.Info("item created", zap.String("sku", item.SKU), zap.String("actor", actor))
	return item, nil
}

func (s *itemService) GetItem(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, failed(s.log, "items.get", lookupError("items.get", "item", id, err))
	}
	return item, nil
}

func (s *itemService) ListItems(ctx context.Context, kind model.ItemKind) ([]model.Item, error) {
	items, err := s.items.FindAll(ctx, model.ItemKind(strings.ToUpper(string(kind))))
	if err != nil {
		return nil, failed(s.log, "items.list", err)
	}
	return items, nil
}

// UpdateItem replaces the item's descriptive fields. A changed threshold
// re-derives the item status from its active records.
func (s *itemService) UpdateItem(ctx context.Context, id uuid.UUID, in ItemInput, actor string) (*model.Item, error) {
	const op = "items.update"

	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	sku := normalizeSKU(in.SKU)
	if sku != item.SKU {
		existing, err := s.items.FindBySKU(ctx, sku)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, failed(s.log, op, err)
		}
		if existing != nil {
			return nil, apperror.Conflict(op, "SKU %s already exists", sku)
		}
	}

	item.SKU = sku
	item.Name = strings.TrimSpace(in.Name)
	item.Kind = model.ItemKind(strings.ToUpper(string(in.Kind)))
	item.Unit = strings.TrimSpace(in.Unit)
	item.MinStockLevel = in.MinStockLevel
	if in.IsActive != nil {
		item.IsActive = *in.IsActive
	}
	if err := s.check(op, item); err != nil {
		return nil, err
	}

	records, err := s.records.FindByItem(s.db.WithContext(ctx), item.ID, true)
	if err != nil {
		return nil, failed(s.log, op, err)
	}
	item.Status = item.RollupStatus(records, s.fallback)
	item.UpdatedBy = actor

	if err := s.items.Update(ctx, item); err != nil {
		return nil, failed(s.log, op, err)
	}
	return item, nil
}

func (s *itemService) check(op string, item *model.Item) error {
	if err := validator.Check(op, item); err != nil {
		return err
	}
	if item.MinStockLevel.Valid && item.MinStockLevel.Decimal.IsNegative() {
		return apperror.Validation(op, "min stock level cannot be negative, got %s", item.MinStockLevel.Decimal)
	}
	return nil
}

func normalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}
