package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"go-leather-stock/config"
	"go-leather-stock/internal/model"
	"go-leather-stock/internal/repository"
	"go-leather-stock/pkg/apperror"
	"go-leather-stock/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type InventoryService interface {
	CreateRecord(ctx context.Context, in CreateRecordInput, actor string) (*model.InventoryRecord, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*model.InventoryRecord, error)
	ListRecords(ctx context.Context, filter repository.InventoryFilter) ([]model.InventoryRecord, error)
	ListTransactions(ctx context.Context, id uuid.UUID, limit int) ([]model.StockTransaction, error)
	ListAllTransactions(ctx context.Context, filter repository.TransactionFilter) ([]model.StockTransaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error)
	Adjust(ctx context.Context, id uuid.UUID, amount decimal.Decimal, reason model.AdjustmentReason, notes, actor string) (*model.StockTransaction, error)
	Reconcile(ctx context.Context, id uuid.UUID, actual decimal.Decimal, notes, actor string) (*model.StockTransaction, error)
	Transfer(ctx context.Context, sourceID uuid.UUID, targetLocation string, quantity decimal.Decimal, notes, actor string) (*model.InventoryRecord, error)
	UpdateThresholds(ctx context.Context, id uuid.UUID, minQuantity decimal.Decimal, maxQuantity decimal.NullDecimal, actor string) (*model.InventoryRecord, error)
	Deactivate(ctx context.Context, id uuid.UUID, actor string) (*model.InventoryRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CreateRecordInput struct {
	ItemID          uuid.UUID           `json:"item_id" validate:"uuid_required"`
	StorageLocation string              `json:"storage_location" validate:"max=100"`
	LocationType    string              `json:"location_type" validate:"max=30"`
	MinQuantity     decimal.NullDecimal `json:"min_quantity"`
	MaxQuantity     decimal.NullDecimal `json:"max_quantity"`
	OpeningStock    decimal.Decimal     `json:"opening_stock"`
}

type inventoryService struct {
	db        *gorm.DB
	records   repository.InventoryRepository
	txs       repository.TransactionRepository
	items     repository.ItemRepository
	ledger    *stockLedger
	observers *Observers
	cfg       config.InventoryConfig
	log       *zap.Logger
}

func NewInventoryService(db *gorm.DB, records repository.InventoryRepository, txs repository.TransactionRepository, items repository.ItemRepository, observers *Observers, cfg config.InventoryConfig, log *zap.Logger) InventoryService {
	return &inventoryService{
		db:        db,
		records:   records,
		txs:       txs,
		items:     items,
		ledger:    &stockLedger{items: items, records: records, transactions: txs, now: time.Now},
		observers: observers,
		cfg:       cfg,
		log:       log.Named("inventory"),
	}
}

func (s *inventoryService) CreateRecord(ctx context.Context, in CreateRecordInput, actor string) (*model.InventoryRecord, error) {
	const op = "inventory.create_record"

	if err := validator.Check(op, in); err != nil {
		return nil, err
	}
	if in.OpeningStock.IsNegative() {
		return nil, apperror.Validation(op, "opening stock cannot be negative, got %s", in.OpeningStock)
	}
	location := strings.TrimSpace(in.StorageLocation)
	if location == "" {
		location = s.cfg.DefaultLocation
	}
	minQuantity := s.cfg.DefaultMinQuantity
	if in.MinQuantity.Valid {
		minQuantity = in.MinQuantity.Decimal
	}

	var (
		record *model.InventoryRecord
		entry  *model.StockTransaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.items.FindForUpdate(tx, in.ItemID)
		if err != nil {
			return lookupError(op, "item", in.ItemID, err)
		}
		if !item.IsActive {
			return apperror.Validation(op, "item %s is inactive", item.SKU)
		}

		existing, err := s.records.FindActiveAt(tx, item.ID, location)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.Conflict(op, "item %s already has an active record at %q", item.SKU, existing.StorageLocation)
		}

		record, err = model.NewInventoryRecord(item.ID, location, minQuantity, in.MaxQuantity)
		if err != nil {
			return err
		}
		record.LocationType = strings.TrimSpace(in.LocationType)
		record.CreatedBy = actor
		record.UpdatedBy = actor
		if err := s.records.Create(tx, record); err != nil {
			return duplicateError(err, op, "item %s already has an active record at %q", item.SKU, location)
		}

		if in.OpeningStock.IsPositive() {
			reason := model.AdjustmentReasonFor(model.AdjInitialStock)
			entry, err = s.ledger.adjust(tx, record, in.OpeningStock, reason, "opening stock", actor)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, failed(s.log, op, err)
	}

	s.log.Info("inventory record created",
		zap.Stringer("record_id", record.ID),
		zap.String("location", record.StorageLocation),
		zap.String("actor", actor))
	s.observers.notify(ctx, StockChange{Action: ActionCreated, Record: *record, Transaction: entry, Actor: actor})
	return record, nil
}

func (s *inventoryService) GetRecord(ctx context.Context, id uuid.UUID) (*model.InventoryRecord, error) {
	record, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, failed(s.log, "inventory.get_record", lookupError("inventory.get_record", "inventory record", id, err))
	}
	return record, nil
}

func (s *inventoryService) ListRecords(ctx context.Context, filter repository.InventoryFilter) ([]model.InventoryRecord, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.Validation("inventory.list_records", "unknown status %q", filter.Status)
	}
	records, err := s.records.FindAll(ctx, filter)
	if err != nil {
		return nil, failed(s.log, "inventory.list_records", err)
	}
	return records, nil
}

func (s *inventoryService) ListTransactions(ctx context.Context, id uuid.UUID, limit int) ([]model.StockTransaction, error) {
	if _, err := s.GetRecord(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.txs.FindByInventory(ctx, id, limit)
	if err != nil {
		return nil, failed(s.log, "inventory.list_transactions", err)
	}
	return entries, nil
}

// ListAllTransactions searches the audit trail across records, newest first.
func (s *inventoryService) ListAllTransactions(ctx context.Context, filter repository.TransactionFilter) ([]model.StockTransaction, error) {
	const op = "inventory.list_all_transactions"

	filter.Type = model.TransactionType(strings.ToUpper(string(filter.Type)))
	if filter.Type != "" && !slices.Contains(model.TransactionTypes, filter.Type) {
		return nil, apperror.Validation(op, "unknown transaction type %q", filter.Type)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return nil, apperror.Validation(op, "from must be before to")
	}
	entries, err := s.txs.FindAll(ctx, filter)
	if err != nil {
		return nil, failed(s.log, op, err)
	}
	return entries, nil
}

func (s *inventoryService) GetTransaction(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error) {
	entry, err := s.txs.FindByID(ctx, id)
	if err != nil {
		return nil, failed(s.log, "inventory.get_transaction", lookupError("inventory.get_transaction", "transaction", id, err))
	}
	return entry, nil
}

// Adjust changes the record's quantity by a signed amount and records the
// change. The record and its transaction are committed together.
func (s *inventoryService) Adjust(ctx context.Context, id uuid.UUID, amount decimal.Decimal, reason model.AdjustmentReason, notes, actor string) (*model.StockTransaction, error) {
	const op = "inventory.adjust"

	var (
		record *model.InventoryRecord
		entry  *model.StockTransaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.lock(tx, op, id)
		if err != nil {
			return err
		}
		entry, err = s.ledger.adjust(tx, record, amount, reason, notes, actor)
		return err
	})
	if err != nil {
		return nil, failed(s.log, op, err)
	}

	s.log.Info("stock adjusted",
		zap.Stringer("record_id", record.ID),
		zap.String("reason", reason.String()),
		zap.Stringer("amount", amount),
		zap.Stringer("quantity", record.Quantity),
		zap.String("status", string(record.Status)),
		zap.String("actor", actor))
	s.observers.notify(ctx, StockChange{Action: ActionAdjusted, Record: *record, Transaction: entry, Actor: actor})
	return entry, nil
}

// Reconcile sets the record to a physically counted quantity. It returns nil
// when the count matches and nothing moved.
func (s *inventoryService) Reconcile(ctx context.Context, id uuid.UUID, actual decimal.Decimal, notes, actor string) (*model.StockTransaction, error) {
	const op = "inventory.reconcile"

	var (
		record *model.InventoryRecord
		entry  *model.StockTransaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.lock(tx, op, id)
		if err != nil {
			return err
		}
		entry, err = s.ledger.reconcile(tx, record, actual, notes, actor)
		return err
	})
	if err != nil {
		return nil, failed(s.log, op, err)
	}

	fields := []zap.Field{
		zap.Stringer("record_id", record.ID),
		zap.Stringer("counted", actual),
		zap.String("actor", actor),
	}
	if entry != nil {
		fields = append(fields, zap.Stringer("difference", entry.SignedQuantity()))
	}
	s.log.Info("physical count recorded", fields...)
	s.observers.notify(ctx, StockChange{Action: ActionCounted, Record: *record, Transaction: entry, Actor: actor})
	return entry, nil
}

// Transfer moves quantity from the source record to the item's active record
// at targetLocation, creating it when needed. Both sides commit or neither
// does.
func (s *inventoryService) Transfer(ctx context.Context, sourceID uuid.UUID, targetLocation string, quantity decimal.Decimal, notes, actor string) (*model.InventoryRecord, error) {
	const op = "inventory.transfer"

	var (
		source      *model.InventoryRecord
		destination *model.InventoryRecord
		entries     []*model.StockTransaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// item before record, the order locate and purchase receipt use
		itemID, err := s.records.FindItemID(tx, sourceID)
		if err != nil {
			return lookupError(op, "inventory record", sourceID, err)
		}
		if _, err := s.items.FindForUpdate(tx, itemID); err != nil {
			return lookupError(op, "item", itemID, err)
		}
		source, err = s.lock(tx, op, sourceID)
		if err != nil {
			return err
		}
		destination, entries, err = s.ledger.transfer(tx, source, targetLocation, quantity, notes, actor)
		return err
	})
	if err != nil {
		return nil, failed(s.log, op, err)
	}

	s.log.Info("stock transferred",
		zap.Stringer("source_id", source.ID),
		zap.Stringer("destination_id", destination.ID),
		zap.String("to", destination.StorageLocation),
		zap.Stringer("quantity", quantity),
		zap.String("actor", actor))
	s.observers.notify(ctx,
		StockChange{Action: ActionTransferred, Record: *source, Transaction: entries[0], Actor: actor},
		StockChange{Action: ActionTransferred, Record: *destination, Transaction: entries[1], Actor: actor},
	)
	return destination, nil
}

func (s *inventoryService) UpdateThresholds(ctx context.Context, id uuid.UUID, minQuantity decimal.Decimal, maxQuantity decimal.NullDecimal, actor string) (*model.InventoryRecord, error) {
	const op = "inventory.update_thresholds"

	var record *model.InventoryRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.lock(tx, op, id)
		if err != nil {
			return err
		}
		if err := record.SetThresholds(minQuantity, maxQuantity); err != nil {
			return err
		}
		return s.ledger.write(tx, record, nil, actor)
	})
	if err != nil {
		return nil, failed(s.log, op, err)
	}

	s.observers.notify(ctx, StockChange{Action: ActionThresholds, Record: *record, Actor: actor})
	return record, nil
}

// Deactivate retires a record without removing its history. Deactivating an
// inactive record is a no-op.
func (s *inventoryService) Deactivate(ctx context.Context, id uuid.UUID, actor string) (*model.InventoryRecord, error) {
	const op = "inventory.deactivate"

	var (
		record  *model.InventoryRecord
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.lock(tx, op, id)
		if err != nil {
			return err
		}
		if !record.IsActive {
			return nil
		}
		record.IsActive = false
		changed = true
		return s.ledger.write(tx, record, nil, actor)
	})
	if err != nil {
		return nil, failed(s.log, op, err)
	}

	if changed {
		s.log.Info("inventory record deactivated", zap.Stringer("record_id", record.ID), zap.String("actor", actor))
		s.observers.notify(ctx, StockChange{Action: ActionDeactivated, Record: *record, Actor: actor})
	}
	return record, nil
}

// Delete removes the record and its transaction history for good.
func (s *inventoryService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "inventory.delete"

	var record *model.InventoryRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.lock(tx, op, id)
		if err != nil {
			return err
		}
		return s.records.HardDelete(tx, id)
	})
	if err != nil {
		return failed(s.log, op, err)
	}

	s.log.Info("inventory record deleted", zap.Stringer("record_id", id))
	record.IsActive = false
	s.observers.notify(ctx, StockChange{Action: ActionDeleted, Record: *record})
	return nil
}

func (s *inventoryService) lock(tx *gorm.DB, op string, id uuid.UUID) (*model.InventoryRecord, error) {
	record, err := s.records.FindForUpdate(tx, id)
	if err != nil {
		return nil, lookupError(op, "inventory record", id, err)
	}
	return record, nil
}
