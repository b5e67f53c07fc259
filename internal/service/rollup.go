package service

import (
	"context"

	"go-leather-stock/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ItemStatusRollup keeps Item.Status in line with the total quantity held
// across the item's active records.
type ItemStatusRollup struct {
	db       *gorm.DB
	items    repository.ItemRepository
	records  repository.InventoryRepository
	fallback decimal.Decimal
	log      *zap.Logger
}

func NewItemStatusRollup(db *gorm.DB, items repository.ItemRepository, records repository.InventoryRepository, fallback decimal.Decimal, log *zap.Logger) *ItemStatusRollup {
	return &ItemStatusRollup{
		db:       db,
		items:    items,
		records:  records,
		fallback: fallback,
		log:      log.Named("rollup"),
	}
}

func (r *ItemStatusRollup) StockChanged(ctx context.Context, change StockChange) error {
	itemID := change.Record.ItemID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := r.items.FindByIDTx(tx, itemID)
		if err != nil {
			return err
		}
		records, err := r.records.FindByItem(tx, itemID, true)
		if err != nil {
			return err
		}

		status := item.RollupStatus(records, r.fallback)
		if status == item.Status {
			return nil
		}
		r.log.Debug("item status changed",
			zap.String("sku", item.SKU),
			zap.String("from", string(item.Status)),
			zap.String("to", string(status)))
		return r.items.UpdateStatus(tx, itemID, status)
	})
}
