package model

import (
	"errors"
	"strings"
	"time"

	"go-leather-stock/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TxPurchase   TransactionType = "PURCHASE"
	TxUsage      TransactionType = "USAGE"
	TxAdjustment TransactionType = "ADJUSTMENT"
	TxTransfer   TransactionType = "TRANSFER"
	TxFound      TransactionType = "FOUND"
	TxLost       TransactionType = "LOST"
	TxRestock    TransactionType = "RESTOCK"
	TxWaste      TransactionType = "WASTE"
	TxReturn     TransactionType = "RETURN"
	TxSale       TransactionType = "SALE"
	TxDamaged    TransactionType = "DAMAGED"
)

// TransactionTypes is the lookup order used by ParseReason.
var TransactionTypes = []TransactionType{
	TxPurchase, TxUsage, TxAdjustment, TxTransfer, TxFound, TxLost,
	TxRestock, TxWaste, TxReturn, TxSale, TxDamaged,
}

// AdjustmentType refines a manual ADJUSTMENT transaction.
type AdjustmentType string

const (
	AdjCorrection       AdjustmentType = "CORRECTION"
	AdjDamage           AdjustmentType = "DAMAGE"
	AdjPhysicalCount    AdjustmentType = "PHYSICAL_COUNT"
	AdjInitialStock     AdjustmentType = "INITIAL_STOCK"
	AdjTheft            AdjustmentType = "THEFT"
	AdjExpired          AdjustmentType = "EXPIRED"
	AdjReturnToSupplier AdjustmentType = "RETURN_TO_SUPPLIER"
)

var AdjustmentTypes = []AdjustmentType{
	AdjCorrection, AdjDamage, AdjPhysicalCount, AdjInitialStock,
	AdjTheft, AdjExpired, AdjReturnToSupplier,
}

// AdjustmentReason is either a plain transaction type or an adjustment type.
// Adjustment-type reasons are recorded as ADJUSTMENT transactions with the
// adjustment code alongside.
type AdjustmentReason struct {
	Type       TransactionType
	Adjustment AdjustmentType
}

func ReasonFor(t TransactionType) AdjustmentReason {
	return AdjustmentReason{Type: t}
}

func AdjustmentReasonFor(a AdjustmentType) AdjustmentReason {
	return AdjustmentReason{Type: TxAdjustment, Adjustment: a}
}

// ParseReason resolves a loosely typed reason code. Matching is
// case-insensitive, spaces and dashes count as underscores, transaction types
// are tried before adjustment types and the first match wins.
func ParseReason(s string) (AdjustmentReason, error) {
	key := normalizeCode(s)
	if key == "" {
		return AdjustmentReason{}, apperror.Validation("model.parse_reason", "adjustment reason is required")
	}
	for _, t := range TransactionTypes {
		if string(t) == key {
			return ReasonFor(t), nil
		}
	}
	for _, a := range AdjustmentTypes {
		if string(a) == key {
			return AdjustmentReasonFor(a), nil
		}
	}
	return AdjustmentReason{}, apperror.Validation("model.parse_reason", "unknown adjustment reason %q", s)
}

func normalizeCode(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func (r AdjustmentReason) IsZero() bool {
	return r.Type == ""
}

// IsRestock reports whether a positive adjustment with this reason counts as
// a restock.
func (r AdjustmentReason) IsRestock() bool {
	return r.Adjustment == "" && (r.Type == TxPurchase || r.Type == TxRestock)
}

func (r AdjustmentReason) String() string {
	if r.Adjustment != "" {
		return string(r.Adjustment)
	}
	return string(r.Type)
}

var ErrTransactionImmutable = errors.New("inventory transactions are append-only")

// StockTransaction is the audit row written by every successful adjustment.
type StockTransaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	InventoryID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"inventory_id"`
	ItemID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"item_id"`
	Quantity        decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	IsAddition      bool            `gorm:"not null" json:"is_addition"`
	TransactionType TransactionType `gorm:"type:varchar(20);not null;index" json:"transaction_type"`
	AdjustmentType  AdjustmentType  `gorm:"type:varchar(30)" json:"adjustment_type,omitempty"`
	QuantityBefore  decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity_before"`
	QuantityAfter   decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity_after"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	CreatedBy       string          `gorm:"type:varchar(255)" json:"created_by"`
}

func (StockTransaction) TableName() string {
	return "inventory_transactions"
}

func (t *StockTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *StockTransaction) BeforeUpdate(tx *gorm.DB) error {
	return ErrTransactionImmutable
}

// SignedQuantity returns the magnitude with the sign of the change applied.
func (t *StockTransaction) SignedQuantity() decimal.Decimal {
	if t.IsAddition {
		return t.Quantity
	}
	return t.Quantity.Neg()
}

func (t *StockTransaction) Reason() AdjustmentReason {
	return AdjustmentReason{Type: t.TransactionType, Adjustment: t.AdjustmentType}
}
