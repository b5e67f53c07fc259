package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-leather-stock/config"
	"go-leather-stock/internal/model"
	"go-leather-stock/internal/repository"
	"go-leather-stock/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testInventoryConfig = config.InventoryConfig{
	DefaultMinQuantity: decimal.NewFromInt(5),
	DefaultLocation:    "Main Storage",
}

type fixture struct {
	db         *gorm.DB
	itemRepo   repository.ItemRepository
	recordRepo repository.InventoryRepository
	txRepo     repository.TransactionRepository
	observers  *Observers
	inventory  InventoryService
	items      ItemService
	purchases  PurchaseService
	dashboard  DashboardService
	recorded   *changeRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureDB(database.NewTestDB(t))
}

func newFixtureDB(db *gorm.DB) *fixture {
	log := zap.NewNop()
	f := &fixture{
		db:         db,
		itemRepo:   repository.NewItemRepo(db),
		recordRepo: repository.NewInventoryRepo(db),
		txRepo:     repository.NewTransactionRepo(db),
		recorded:   &changeRecorder{},
	}
	f.observers = NewObservers(log,
		NewItemStatusRollup(db, f.itemRepo, f.recordRepo, testInventoryConfig.DefaultMinQuantity, log),
		f.recorded,
	)
	f.inventory = NewInventoryService(db, f.recordRepo, f.txRepo, f.itemRepo, f.observers, testInventoryConfig, log)
	f.items = NewItemService(db, f.itemRepo, f.recordRepo, testInventoryConfig.DefaultMinQuantity, log)
	f.purchases = NewPurchaseService(db, repository.NewPurchaseRepo(db), f.itemRepo, f.recordRepo, f.txRepo, f.observers, testInventoryConfig, log)
	f.dashboard = NewDashboardService(f.txRepo, f.recordRepo, log)
	return f
}

type changeRecorder struct {
	mu      sync.Mutex
	changes []StockChange
}

func (r *changeRecorder) StockChanged(ctx context.Context, change StockChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
	return nil
}

func (r *changeRecorder) actions() []StockAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StockAction, len(r.changes))
	for i, c := range r.changes {
		out[i] = c.Action
	}
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) createItem(t *testing.T, sku string) *model.Item {
	t.Helper()
	item, err := f.items.CreateItem(context.Background(), ItemInput{
		SKU:  sku,
		Name: "Item " + sku,
		Kind: model.KindLeather,
		Unit: "sqft",
	}, "tester")
	if err != nil {
		t.Fatalf("creating item %s: %v", sku, err)
	}
	return item
}

// createRecord creates a record with min 5 and the given opening stock.
func (f *fixture) createRecord(t *testing.T, item *model.Item, location string, opening string) *model.InventoryRecord {
	t.Helper()
	record, err := f.inventory.CreateRecord(context.Background(), CreateRecordInput{
		ItemID:          item.ID,
		StorageLocation: location,
		MinQuantity:     decimal.NewNullDecimal(dec("5")),
		OpeningStock:    dec(opening),
	}, "tester")
	if err != nil {
		t.Fatalf("creating record at %s: %v", location, err)
	}
	return record
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *model.InventoryRecord {
	t.Helper()
	record, err := f.inventory.GetRecord(context.Background(), id)
	if err != nil {
		t.Fatalf("reloading record %s: %v", id, err)
	}
	return record
}

func (f *fixture) transactions(t *testing.T, id uuid.UUID) []model.StockTransaction {
	t.Helper()
	entries, err := f.txRepo.FindByInventory(context.Background(), id, 0)
	if err != nil {
		t.Fatalf("listing transactions for %s: %v", id, err)
	}
	return entries
}

// failingTransactions fails the nth Create call.
type failingTransactions struct {
	repository.TransactionRepository
	failOn int
	calls  int
}

func (r *failingTransactions) Create(tx *gorm.DB, entry *model.StockTransaction) error {
	r.calls++
	if r.calls == r.failOn {
		return errInjected
	}
	return r.TransactionRepository.Create(tx, entry)
}

var errInjected = errors.New("injected failure")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
