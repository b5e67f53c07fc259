package service

import (
	"time"

	"go-leather-stock/internal/model"
	"go-leather-stock/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// stockLedger performs record mutations inside a caller-owned transaction.
// Every quantity change goes through adjust so the record and its audit row
// are written together.
type stockLedger struct {
	items        repository.ItemRepository
	records      repository.InventoryRepository
	transactions repository.TransactionRepository
	now          func() time.Time
}

func (l *stockLedger) adjust(tx *gorm.DB, record *model.InventoryRecord, amount decimal.Decimal, reason model.AdjustmentReason, notes, actor string) (*model.StockTransaction, error) {
	entry, err := record.Apply(amount, reason, notes, l.now())
	if err != nil {
		return nil, err
	}
	if err := l.write(tx, record, entry, actor); err != nil {
		return nil, err
	}
	return entry, nil
}

func (l *stockLedger) reconcile(tx *gorm.DB, record *model.InventoryRecord, actual decimal.Decimal, notes, actor string) (*model.StockTransaction, error) {
	entry, err := record.Reconcile(actual, notes, l.now())
	if err != nil {
		return nil, err
	}
	if err := l.write(tx, record, entry, actor); err != nil {
		return nil, err
	}
	return entry, nil
}

// write saves record and appends entry when there is one.
func (l *stockLedger) write(tx *gorm.DB, record *model.InventoryRecord, entry *model.StockTransaction, actor string) error {
	record.UpdatedBy = actor
	if err := l.records.Save(tx, record); err != nil {
		return err
	}
	if entry == nil {
		return nil
	}
	entry.CreatedBy = actor
	return l.transactions.Create(tx, entry)
}

// locate returns the active record for itemID at location, inserting the
// record built by create when there is none. The item row stays locked until
// tx ends so two writers cannot both create the record.
func (l *stockLedger) locate(tx *gorm.DB, itemID uuid.UUID, location, actor string, create func() (*model.InventoryRecord, error)) (*model.InventoryRecord, bool, error) {
	if _, err := l.items.FindForUpdate(tx, itemID); err != nil {
		return nil, false, lookupError("inventory.locate", "item", itemID, err)
	}
	existing, err := l.records.FindActiveAt(tx, itemID, location)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	record, err := create()
	if err != nil {
		return nil, false, err
	}
	record.CreatedBy = actor
	record.UpdatedBy = actor
	if err := l.records.Create(tx, record); err != nil {
		return nil, false, duplicateError(err, "inventory.locate", "item %s already has an active record at %q", itemID, location)
	}
	return record, true, nil
}

// transfer moves quantity from source to the active record at target.
// Both legs share tx.
func (l *stockLedger) transfer(tx *gorm.DB, source *model.InventoryRecord, target string, quantity decimal.Decimal, notes, actor string) (*model.InventoryRecord, []*model.StockTransaction, error) {
	if err := source.ValidateTransfer(target, quantity); err != nil {
		return nil, nil, err
	}

	destination, _, err := l.locate(tx, source.ItemID, target, actor, func() (*model.InventoryRecord, error) {
		return source.Sibling(target), nil
	})
	if err != nil {
		return nil, nil, err
	}

	reason := model.ReasonFor(model.TxTransfer)
	out, err := l.adjust(tx, source, quantity.Neg(), reason, transferNote(notes, "to", destination.StorageLocation), actor)
	if err != nil {
		return nil, nil, err
	}
	in, err := l.adjust(tx, destination, quantity, reason, transferNote(notes, "from", source.StorageLocation), actor)
	if err != nil {
		return nil, nil, err
	}
	return destination, []*model.StockTransaction{out, in}, nil
}

func transferNote(notes, direction, location string) string {
	if notes != "" {
		return notes
	}
	return "transfer " + direction + " " + location
}
