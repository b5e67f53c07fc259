package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-leather-stock/internal/model"
	"go-leather-stock/internal/repository"
	"go-leather-stock/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestCreateRecordWithOpeningStock(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "LTH-001")

	record := f.createRecord(t, item, "Shelf A", "12")
	if !record.Quantity.Equal(dec("12")) || record.Status != model.StatusInStock {
		t.Fatalf("got quantity %s status %s", record.Quantity, record.Status)
	}

	entries := f.transactions(t, record.ID)
	if len(entries) != 1 {
		t.Fatalf("expected one opening transaction, got %d", len(entries))
	}
	if entries[0].TransactionType != model.TxAdjustment || entries[0].AdjustmentType != model.AdjInitialStock {
		t.Errorf("opening stock recorded as %s/%s", entries[0].TransactionType, entries[0].AdjustmentType)
	}
	if entries[0].CreatedBy != "tester" {
		t.Errorf("expected actor tester, got %q", entries[0].CreatedBy)
	}
}

func TestCreateRecordDefaults(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "LTH-002")

	record, err := f.inventory.CreateRecord(context.Background(), CreateRecordInput{ItemID: item.ID}, "tester")
	if err != nil {
		t.Fatal(err)
	}
	if record.StorageLocation != "Main Storage" {
		t.Errorf("expected default location, got %q", record.StorageLocation)
	}
	if !record.MinQuantity.Equal(dec("5")) {
		t.Errorf("expected default min 5, got %s", record.MinQuantity)
	}
	if record.Status != model.StatusOutOfStock {
		t.Errorf("empty record should be OUT_OF_STOCK, got %s", record.Status)
	}
	if len(f.transactions(t, record.ID)) != 0 {
		t.Error("no transaction expected without opening stock")
	}
}

func TestCreateRecordRejects(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "LTH-003")
	f.createRecord(t, item, "Shelf A", "0")

	cases := []struct {
		name string
		in   CreateRecordInput
		want error
	}{
		{"missing item id", CreateRecordInput{}, apperror.ErrValidation},
		{"unknown item", CreateRecordInput{ItemID: uuid.New()}, apperror.ErrNotFound},
		{"max not above min", CreateRecordInput{
			ItemID:      item.ID,
			MinQuantity: decimal.NewNullDecimal(dec("10")),
			MaxQuantity: decimal.NewNullDecimal(dec("10")),
		}, apperror.ErrValidation},
		{"negative opening", CreateRecordInput{ItemID: item.ID, OpeningStock: dec("-1")}, apperror.ErrValidation},
		{"duplicate location", CreateRecordInput{ItemID: item.ID, StorageLocation: "  shelf a "}, apperror.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.inventory.CreateRecord(context.Background(), tc.in, "tester")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAdjustUsage(t *testing.T) {
	f := newFixture(t)
	record := f.createRecord(t, f.createItem(t, "HW-001"), "Shelf A", "10")

	entry, err := f.inventory.Adjust(context.Background(), record.ID, dec("-7"), model.ReasonFor(model.TxUsage), "belt order", "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if entry.TransactionType != model.TxUsage || !entry.Quantity.Equal(dec("7")) || entry.IsAddition {
		t.Errorf("unexpected transaction %+v", entry)
	}
	if !entry.QuantityBefore.Equal(dec("10")) || !entry.QuantityAfter.Equal(dec("3")) {
		t.Errorf("before/after = %s/%s", entry.QuantityBefore, entry.QuantityAfter)
	}

	got := f.reload(t, record.ID)
	if !got.Quantity.Equal(dec("3")) || got.Status != model.StatusLowStock {
		t.Errorf("got quantity %s status %s", got.Quantity, got.Status)
	}
	if got.LastCountDate == nil {
		t.Error("last count date should be stamped")
	}
	if len(f.transactions(t, record.ID)) != 2 {
		t.Error("expected opening and usage transactions")
	}
}

func TestAdjustRejectsNegativeResult(t *testing.T) {
	f := newFixture(t)
	record := f.createRecord(t, f.createItem(t, "HW-002"), "Shelf A", "3")

	_, err := f.inventory.Adjust(context.Background(), record.ID, dec("-5"), model.ReasonFor(model.TxUsage), "", "u-1")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	got := f.reload(t, record.ID)
	if !got.Quantity.Equal(dec("3")) {
		t.Errorf("quantity changed to %s", got.Quantity)
	}
	if n := len(f.transactions(t, record.ID)); n != 1 {
		t.Errorf("expected only the opening transaction, got %d", n)
	}
}

func TestAdjustRestockStampsRestockDate(t *testing.T) {
	f := newFixture(t)
	record := f.createRecord(t, f.createItem(t, "HW-003"), "Shelf A", "0")
	if record.LastRestockDate != nil {
		t.Fatal("new record should have no restock date")
	}

	if _, err := f.inventory.Adjust(context.Background(), record.ID, dec("4"), model.ReasonFor(model.TxFound), "", "u-1"); err != nil {
		t.Fatal(err)
	}
	if f.reload(t, record.ID).LastRestockDate != nil {
		t.Error("FOUND should not count as a restock")
	}

	if _, err := f.inventory.Adjust(context.Background(), record.ID, dec("20"), model.ReasonFor(model.TxRestock), "", "u-1"); err != nil {
		t.Fatal(err)
	}
	if f.reload(t, record.ID).LastRestockDate == nil {
		t.Error("RESTOCK should stamp the restock date")
	}
}

func TestAdjustUnknownRecord(t *testing.T) {
	f := newFixture(t)
	_, err := f.inventory.Adjust(context.Background(), uuid.New(), dec("1"), model.ReasonFor(model.TxFound), "", "u-1")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdjustNotifiesObserversAfterCommit(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "HW-004")
	record := f.createRecord(t, item, "Shelf A", "10")

	failing := StockObserverFunc(func(ctx context.Context, change StockChange) error {
		return errors.New("rollup unavailable")
	})
	panicking := StockObserverFunc(func(ctx context.Context, change StockChange) error {
		panic("boom")
	})
	f.observers.Add(failing)
	f.observers.Add(panicking)

	if _, err := f.inventory.Adjust(context.Background(), record.ID, dec("-6"), model.ReasonFor(model.TxSale), "", "u-1"); err != nil {
		t.Fatalf("observer failures must not fail the adjustment: %v", err)
	}

	actions := f.recorded.actions()
	if len(actions) != 2 || actions[1] != ActionAdjusted {
		t.Errorf("unexpected notifications %v", actions)
	}

	updated, err := f.items.GetItem(context.Background(), item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != model.StatusLowStock {
		t.Errorf("expected item rollup LOW_STOCK, got %s", updated.Status)
	}
}

func TestReconcile(t *testing.T) {
	f := newFixture(t)
	record := f.createRecord(t, f.createItem(t, "MAT-001"), "Shelf A", "10")

	entry, err := f.inventory.Reconcile(context.Background(), record.ID, dec("8"), "monthly count", "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil || entry.TransactionType != model.TxLost || !entry.Quantity.Equal(dec("2")) {
		t.Fatalf("expected LOST 2, got %+v", entry)
	}

	entry, err = f.inventory.Reconcile(context.Background(), record.ID, dec("11"), "", "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil || entry.TransactionType != model.TxFound || !entry.Quantity.Equal(dec("3")) {
		t.Fatalf("expected FOUND 3, got %+v", entry)
	}

	before := len(f.transactions(t, record.ID))
	entry, err = f.inventory.Reconcile(context.Background(), record.ID, dec("11"), "", "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if entry != nil {
		t.Errorf("matching count should not create a transaction, got %+v", entry)
	}
	if after := len(f.transactions(t, record.ID)); after != before {
		t.Errorf("transaction count changed from %d to %d", before, after)
	}
	if f.reload(t, record.ID).LastCountDate == nil {
		t.Error("matching count should still stamp last count date")
	}
}

func TestTransferCreatesDestination(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "LTH-010")
	source := f.createRecord(t, item, "Shelf A", "10")

	dest, err := f.inventory.Transfer(context.Background(), source.ID, "Shelf B", dec("5"), "", "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if dest.ID == source.ID || dest.StorageLocation != "Shelf B" {
		t.Fatalf("unexpected destination %+v", dest)
	}
	if !dest.Quantity.Equal(dec("5")) || !dest.MinQuantity.Equal(source.MinQuantity) {
		t.Errorf("destination quantity %s min %s", dest.Quantity, dest.MinQuantity)
	}
	if got := f.reload(t, source.ID); !got.Quantity.Equal(dec("5")) {
		t.Errorf("source quantity %s", got.Quantity)
	}

	var out model.StockTransaction
	for _, entry := range f.transactions(t, source.ID) {
		if entry.TransactionType == model.TxTransfer {
			out = entry
		}
	}
	in := f.transactions(t, dest.ID)
	if len(in) != 1 {
		t.Fatalf("expected one destination transaction, got %d", len(in))
	}
	if out.TransactionType != model.TxTransfer || in[0].TransactionType != model.TxTransfer {
		t.Error("both legs should be TRANSFER")
	}
	if !out.Quantity.Equal(in[0].Quantity) || out.IsAddition || !in[0].IsAddition {
		t.Errorf("legs do not match: out %+v in %+v", out, in[0])
	}
	if out.Notes != "transfer to Shelf B" || in[0].Notes != "transfer from Shelf A" {
		t.Errorf("default notes %q / %q", out.Notes, in[0].Notes)
	}
}

func TestTransferReusesExistingDestination(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "LTH-011")
	source := f.createRecord(t, item, "Shelf A", "10")
	existing := f.createRecord(t, item, "Shelf B", "2")

	dest, err := f.inventory.Transfer(context.Background(), source.ID, "  SHELF b", dec("4"), "restock bench", "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if dest.ID != existing.ID {
		t.Fatalf("expected existing record %s, got %s", existing.ID, dest.ID)
	}
	if !dest.Quantity.Equal(dec("6")) {
		t.Errorf("destination quantity %s", dest.Quantity)
	}
}

func TestTransferRejectsBeforeMutation(t *testing.T) {
	f := newFixture(t)
	source := f.createRecord(t, f.createItem(t, "LTH-012"), "Shelf A", "3")

	cases := []struct {
		name     string
		target   string
		quantity string
	}{
		{"zero quantity", "Shelf B", "0"},
		{"negative quantity", "Shelf B", "-1"},
		{"insufficient stock", "Shelf B", "4"},
		{"same location", " shelf a", "1"},
		{"empty target", "  ", "1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.inventory.Transfer(context.Background(), source.ID, tc.target, dec(tc.quantity), "", "u-1")
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	records, err := f.inventory.ListRecords(context.Background(), repository.InventoryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || !records[0].Quantity.Equal(dec("3")) {
		t.Errorf("rejected transfers left state behind: %+v", records)
	}
}

func TestTransferIsAtomic(t *testing.T) {
	f := newFixture(t)
	source := f.createRecord(t, f.createItem(t, "LTH-013"), "Shelf A", "10")

	// Opening stock used the real repository; fail the destination leg.
	failing := &failingTransactions{TransactionRepository: f.txRepo, failOn: 2}
	svc := NewInventoryService(f.db, f.recordRepo, failing, f.itemRepo, f.observers, testInventoryConfig, zap.NewNop())

	_, err := svc.Transfer(context.Background(), source.ID, "Shelf B", dec("4"), "", "u-1")
	if !errors.Is(err, errInjected) || !errors.Is(err, apperror.ErrInternal) {
		t.Fatalf("expected injected internal error, got %v", err)
	}

	if got := f.reload(t, source.ID); !got.Quantity.Equal(dec("10")) {
		t.Errorf("source quantity %s after failed transfer", got.Quantity)
	}
	if n := len(f.transactions(t, source.ID)); n != 1 {
		t.Errorf("expected only the opening transaction, got %d", n)
	}
	records, err := f.inventory.ListRecords(context.Background(), repository.InventoryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("destination record should have been rolled back, got %d records", len(records))
	}
}

func TestUpdateThresholdsRederivesStatus(t *testing.T) {
	f := newFixture(t)
	record := f.createRecord(t, f.createItem(t, "TL-001"), "Shelf A", "8")

	updated, err := f.inventory.UpdateThresholds(context.Background(), record.ID, dec("2"), decimal.NewNullDecimal(dec("8")), "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != model.StatusOnOrder {
		t.Errorf("quantity at max should be ON_ORDER, got %s", updated.Status)
	}

	_, err = f.inventory.UpdateThresholds(context.Background(), record.ID, dec("9"), decimal.NewNullDecimal(dec("8")), "u-1")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeactivateBlocksAdjustments(t *testing.T) {
	f := newFixture(t)
	record := f.createRecord(t, f.createItem(t, "TL-002"), "Shelf A", "8")

	got, err := f.inventory.Deactivate(context.Background(), record.ID, "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.IsActive {
		t.Fatal("record still active")
	}

	_, err = f.inventory.Adjust(context.Background(), record.ID, dec("1"), model.ReasonFor(model.TxFound), "", "u-1")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	active, err := f.inventory.ListRecords(context.Background(), repository.InventoryFilter{ActiveOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Errorf("expected no active records, got %d", len(active))
	}
}

func TestDeleteRemovesHistory(t *testing.T) {
	f := newFixture(t)
	record := f.createRecord(t, f.createItem(t, "TL-003"), "Shelf A", "8")

	if err := f.inventory.Delete(context.Background(), record.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.inventory.GetRecord(context.Background(), record.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if n := len(f.transactions(t, record.ID)); n != 0 {
		t.Errorf("expected transactions removed, got %d", n)
	}
	if err := f.inventory.Delete(context.Background(), record.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second delete should be not found, got %v", err)
	}
}

func TestListTransactionsUnknownRecord(t *testing.T) {
	f := newFixture(t)
	_, err := f.inventory.ListTransactions(context.Background(), uuid.New(), 10)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdjustUsesLedgerClock(t *testing.T) {
	f := newFixture(t)
	record := f.createRecord(t, f.createItem(t, "TL-004"), "Shelf A", "8")

	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	f.inventory.(*inventoryService).ledger.now = fixedClock(at)

	entry, err := f.inventory.Adjust(context.Background(), record.ID, dec("1"), model.AdjustmentReasonFor(model.AdjCorrection), "", "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if !entry.CreatedAt.Equal(at) {
		t.Errorf("transaction time %s, want %s", entry.CreatedAt, at)
	}
	if got := f.reload(t, record.ID); got.LastCountDate == nil || !got.LastCountDate.Equal(at) {
		t.Errorf("last count date %v, want %s", got.LastCountDate, at)
	}
}

// blindLocations misses existing records at a location, the way a writer
// racing another transaction would.
type blindLocations struct {
	repository.InventoryRepository
}

func (blindLocations) FindActiveAt(*gorm.DB, uuid.UUID, string) (*model.InventoryRecord, error) {
	return nil, nil
}

func TestDuplicateActiveLocationConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "LTH-020")
	source := f.createRecord(t, item, "Shelf A", "10")
	existing := f.createRecord(t, item, "Shelf B", "2")

	blind := NewInventoryService(f.db, blindLocations{f.recordRepo}, f.txRepo, f.itemRepo, f.observers, testInventoryConfig, zap.NewNop())

	_, err := blind.CreateRecord(ctx, CreateRecordInput{ItemID: item.ID, StorageLocation: "shelf b"}, "u-1")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second active record at Shelf B: expected conflict, got %v", err)
	}
	if _, err := blind.Transfer(ctx, source.ID, "Shelf B", dec("4"), "", "u-1"); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("transfer creating a duplicate destination: expected conflict, got %v", err)
	}

	records, err := f.inventory.ListRecords(ctx, repository.InventoryFilter{ItemID: item.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected the two original records, got %d", len(records))
	}
	if got := f.reload(t, source.ID); !got.Quantity.Equal(dec("10")) {
		t.Errorf("source quantity %s after rejected transfer", got.Quantity)
	}
	if got := f.reload(t, existing.ID); !got.Quantity.Equal(dec("2")) {
		t.Errorf("destination quantity %s after rejected transfer", got.Quantity)
	}
}

func TestListAllTransactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hide := f.createItem(t, "LTH-030")
	thread := f.createItem(t, "MAT-030")
	hideRecord := f.createRecord(t, hide, "Shelf A", "10")
	f.createRecord(t, thread, "Shelf A", "4")

	usage, err := f.inventory.Adjust(ctx, hideRecord.ID, dec("-2"), model.ReasonFor(model.TxUsage), "cut panels", "u-1")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		filter repository.TransactionFilter
		want   int
	}{
		{"all", repository.TransactionFilter{}, 3},
		{"by item", repository.TransactionFilter{ItemID: hide.ID}, 2},
		{"by type", repository.TransactionFilter{Type: "usage"}, 1},
		{"limit", repository.TransactionFilter{Limit: 1}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := f.inventory.ListAllTransactions(ctx, tc.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != tc.want {
				t.Errorf("got %d entries, want %d", len(entries), tc.want)
			}
		})
	}

	if _, err := f.inventory.ListAllTransactions(ctx, repository.TransactionFilter{Type: "bogus"}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("unknown type should fail validation, got %v", err)
	}
	day := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	if _, err := f.inventory.ListAllTransactions(ctx, repository.TransactionFilter{From: day, To: day.AddDate(0, 0, -1)}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("inverted range should fail validation, got %v", err)
	}

	entry, err := f.inventory.GetTransaction(ctx, usage.ID)
	if err != nil {
		t.Fatal(err)
	}
	if entry.ItemID != hide.ID || entry.TransactionType != model.TxUsage || entry.Notes != "cut panels" {
		t.Errorf("unexpected transaction %+v", entry)
	}
	if _, err := f.inventory.GetTransaction(ctx, uuid.New()); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("unknown transaction should be not found, got %v", err)
	}
}
