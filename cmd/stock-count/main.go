// Command stock-count records a physical count against one inventory record
// and prints the resulting adjustment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go-leather-stock/config"
	"go-leather-stock/internal/repository"
	"go-leather-stock/internal/service"
	"go-leather-stock/pkg/database"
	applog "go-leather-stock/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	var (
		recordFlag = flag.String("record", "", "Inventory record id")
		actualFlag = flag.String("actual", "", "Physically counted quantity")
		notes      = flag.String("notes", "", "Notes stored on the adjustment")
		actor      = flag.String("actor", "stock-count", "Actor recorded on the transaction")
	)
	flag.Parse()

	if err := run(context.Background(), *recordFlag, *actualFlag, *notes, *actor); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, recordArg, actualArg, notes, actor string) error {
	recordID, err := uuid.Parse(recordArg)
	if err != nil {
		return fmt.Errorf("invalid -record %q: %w", recordArg, err)
	}
	actual, err := decimal.NewFromString(actualArg)
	if err != nil {
		return fmt.Errorf("invalid -actual %q: %w", actualArg, err)
	}

	_ = godotenv.Load()
	cfg := config.LoadEnv()

	zlog, err := applog.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer zlog.Sync()

	db, err := database.ConnectDB(cfg.Postgres, cfg.Server.AppEnv, zlog)
	if err != nil {
		return err
	}

	itemRepo := repository.NewItemRepo(db)
	recordRepo := repository.NewInventoryRepo(db)
	observers := service.NewObservers(zlog,
		service.NewItemStatusRollup(db, itemRepo, recordRepo, cfg.Inventory.DefaultMinQuantity, zlog),
	)
	inventory := service.NewInventoryService(db, recordRepo, repository.NewTransactionRepo(db), itemRepo, observers, cfg.Inventory, zlog)

	entry, err := inventory.Reconcile(ctx, recordID, actual, notes, actor)
	if err != nil {
		return err
	}

	record, err := inventory.GetRecord(ctx, recordID)
	if err != nil {
		return err
	}
	if entry == nil {
		fmt.Printf("Count matches: %s at %s (%s)\n", record.Quantity, record.StorageLocation, record.Status)
		return nil
	}
	fmt.Printf("%s %s: %s -> %s at %s (%s)\n",
		entry.TransactionType, entry.Quantity, entry.QuantityBefore, entry.QuantityAfter,
		record.StorageLocation, record.Status)
	return nil
}
