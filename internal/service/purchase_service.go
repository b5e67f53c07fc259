package service

import (
	"context"
	"errors"
	"fmt"
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

type PurchaseService interface {
	Create(ctx context.Context, in CreatePurchaseInput, actor string) (*model.Purchase, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	List(ctx context.Context, status model.PurchaseStatus) ([]model.Purchase, error)
	MarkOrdered(ctx context.Context, id uuid.UUID, actor string) (*model.Purchase, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, actor string) (*model.Purchase, error)
	Cancel(ctx context.Context, id uuid.UUID, actor string) (*model.Purchase, error)
}

type CreatePurchaseInput struct {
	Supplier          string              `json:"supplier" validate:"required,max=255"`
	Reference         string              `json:"reference" validate:"max=100"`
	ReceivingLocation string              `json:"receiving_location" validate:"max=100"`
	Notes             string              `json:"notes"`
	Items             []PurchaseLineInput `json:"items" validate:"required,min=1,dive"`
}

type PurchaseLineInput struct {
	ItemID    uuid.UUID       `json:"item_id" validate:"uuid_required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"decimal_gt0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type purchaseService struct {
	db        *gorm.DB
	purchases repository.PurchaseRepository
	items     repository.ItemRepository
	ledger    *stockLedger
	observers *Observers
	cfg       config.InventoryConfig
	log       *zap.Logger
}

func NewPurchaseService(db *gorm.DB, purchases repository.PurchaseRepository, items repository.ItemRepository, records repository.InventoryRepository, txs repository.TransactionRepository, observers *Observers, cfg config.InventoryConfig, log *zap.Logger) PurchaseService {
	return &purchaseService{
		db:        db,
		purchases: purchases,
		items:     items,
		ledger:    &stockLedger{items: items, records: records, transactions: txs, now: time.Now},
		observers: observers,
		cfg:       cfg,
		log:       log.Named("purchases"),
	}
}

func (s *purchaseService) Create(ctx context.Context, in CreatePurchaseInput, actor string) (*model.Purchase, error) {
	const op = "purchases.create"

	if err := validator.Check(op, in); err != nil {
		return nil, err
	}

	purchase := &model.Purchase{
		Supplier:          strings.TrimSpace(in.Supplier),
		Reference:         strings.TrimSpace(in.Reference),
		Status:            model.PurchaseDraft,
		ReceivingLocation: strings.TrimSpace(in.ReceivingLocation),
		Notes:             in.Notes,
	}
	for i, line := range in.Items {
		if line.UnitPrice.IsNegative() {
			return nil, apperror.Validation(op, "line %d: unit price cannot be negative, got %s", i+1, line.UnitPrice)
		}
		item, err := s.items.FindByID(ctx, line.ItemID)
		if err != nil {
			return nil, failed(s.log, op, lookupError(op, "item", line.ItemID, err))
		}
		if !item.IsActive {
			return nil, apperror.Validation(op, "line %d: item %s is inactive", i+1, item.SKU)
		}
		purchase.Items = append(purchase.Items, model.PurchaseItem{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	purchase.CreatedBy = actor
	purchase.UpdatedBy = actor
	if err := s.purchases.Create(ctx, purchase); err != nil {
		return nil, failed(s.log, op, err)
	}
	s.log.Info("purchase created",
		zap.Stringer("purchase_id", purchase.ID),
		zap.String("supplier", purchase.Supplier),
		zap.Int("lines", len(purchase.Items)))
	return purchase, nil
}

func (s *purchaseService) Get(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	purchase, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		return nil, failed(s.log, "purchases.get", lookupError("purchases.get", "purchase", id, err))
	}
	return purchase, nil
}

func (s *purchaseService) List(ctx context.Context, status model.PurchaseStatus) ([]model.Purchase, error) {
	purchases, err := s.purchases.FindAll(ctx, model.PurchaseStatus(strings.ToUpper(string(status))))
	if err != nil {
		return nil, failed(s.log, "purchases.list", err)
	}
	return purchases, nil
}

func (s *purchaseService) MarkOrdered(ctx context.Context, id uuid.UUID, actor string) (*model.Purchase, error) {
	return s.transition(ctx, "purchases.mark_ordered", id, actor, []model.PurchaseStatus{model.PurchaseDraft},
		func(p *model.Purchase, now time.Time) {
			p.Status = model.PurchaseOrdered
			p.OrderedAt = &now
		})
}

func (s *purchaseService) Cancel(ctx context.Context, id uuid.UUID, actor string) (*model.Purchase, error) {
	return s.transition(ctx, "purchases.cancel", id, actor, []model.PurchaseStatus{model.PurchaseDraft, model.PurchaseOrdered},
		func(p *model.Purchase, _ time.Time) {
			p.Status = model.PurchaseCancelled
		})
}

// transition moves a purchase out of one of the from statuses while holding
// its row lock. The write is guarded on from as well, so a delivery that
// committed first makes the transition fail with a conflict.
func (s *purchaseService) transition(ctx context.Context, op string, id uuid.UUID, actor string, from []model.PurchaseStatus, apply func(p *model.Purchase, now time.Time)) (*model.Purchase, error) {
	var purchase *model.Purchase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		purchase, err = s.purchases.FindForUpdate(tx, id)
		if err != nil {
			return lookupError(op, "purchase", id, err)
		}
		if !slices.Contains(from, purchase.Status) {
			return apperror.Conflict(op, "purchase %s is %s", purchase.ID, purchase.Status)
		}

		now := s.ledger.now()
		apply(purchase, now)
		purchase.UpdatedBy = actor
		purchase.UpdatedAt = now
		return statusWrite(op, s.purchases.UpdateStatus(tx, purchase, from...), purchase)
	})
	if err != nil {
		return nil, failed(s.log, op, err)
	}

	s.log.Info("purchase status changed",
		zap.Stringer("purchase_id", purchase.ID),
		zap.String("status", string(purchase.Status)),
		zap.String("actor", actor))
	return purchase, nil
}

func statusWrite(op string, err error, purchase *model.Purchase) error {
	if errors.Is(err, repository.ErrStatusChanged) {
		return apperror.Conflict(op, "purchase %s changed status while being updated", purchase.ID)
	}
	return err
}

// MarkDelivered receives every line of the purchase into stock at the
// receiving location. All lines and the status change commit together.
func (s *purchaseService) MarkDelivered(ctx context.Context, id uuid.UUID, actor string) (*model.Purchase, error) {
	const op = "purchases.mark_delivered"

	var (
		purchase *model.Purchase
		changes  []StockChange
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		purchase, err = s.purchases.FindForUpdate(tx, id)
		if err != nil {
			return lookupError(op, "purchase", id, err)
		}
		if !purchase.CanDeliver() {
			return apperror.Conflict(op, "purchase %s is %s and cannot be delivered", purchase.ID, purchase.Status)
		}

		location := purchase.ReceivingLocation
		if location == "" {
			location = s.cfg.DefaultLocation
		}
		notes := receiptNote(purchase)

		changes = changes[:0]
		for i := range purchase.Items {
			line := &purchase.Items[i]
			item, err := s.items.FindForUpdate(tx, line.ItemID)
			if err != nil {
				return lookupError(op, "item", line.ItemID, err)
			}
			if !item.IsActive {
				return apperror.Validation(op, "line %d: item %s is inactive", i+1, item.SKU)
			}

			record, _, err := s.ledger.locate(tx, item.ID, location, actor, func() (*model.InventoryRecord, error) {
				return model.NewInventoryRecord(item.ID, location, item.LowStockThreshold(s.cfg.DefaultMinQuantity), decimal.NullDecimal{})
			})
			if err != nil {
				return err
			}
			entry, err := s.ledger.adjust(tx, record, line.Quantity, model.ReasonFor(model.TxPurchase), notes, actor)
			if err != nil {
				return err
			}

			recordID := record.ID
			line.InventoryID = &recordID
			changes = append(changes, StockChange{Action: ActionReceived, Record: *record, Transaction: entry, Actor: actor})
		}

		now := s.ledger.now()
		purchase.Status = model.PurchaseDelivered
		purchase.DeliveredAt = &now
		purchase.UpdatedBy = actor
		purchase.UpdatedAt = now
		if err := statusWrite(op, s.purchases.UpdateStatus(tx, purchase, model.PurchaseDraft, model.PurchaseOrdered), purchase); err != nil {
			return err
		}
		return s.purchases.Save(tx, purchase)
	})
	if err != nil {
		return nil, failed(s.log, op, err)
	}

	s.log.Info("purchase delivered",
		zap.Stringer("purchase_id", purchase.ID),
		zap.Int("lines", len(purchase.Items)),
		zap.String("actor", actor))
	s.observers.notify(ctx, changes...)
	return purchase, nil
}

func receiptNote(p *model.Purchase) string {
	if p.Reference != "" {
		return fmt.Sprintf("purchase %s from %s", p.Reference, p.Supplier)
	}
	return "purchase from " + p.Supplier
}
