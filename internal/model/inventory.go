package model

import (
	"strings"
	"time"

	"go-leather-stock/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryRecord is one stock line for an item at a storage location.
// Quantity only changes through Apply, which keeps Status in step with it.
type InventoryRecord struct {
	BaseModel
	ItemID          uuid.UUID           `gorm:"type:uuid;not null;index" json:"item_id"`
	Item            *Item               `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Quantity        decimal.Decimal     `gorm:"type:numeric(14,3);not null" json:"quantity"`
	MinQuantity     decimal.Decimal     `gorm:"type:numeric(14,3);not null" json:"min_quantity"`
	MaxQuantity     decimal.NullDecimal `gorm:"type:numeric(14,3)" json:"max_quantity"`
	Status          StockStatus         `gorm:"type:varchar(20);not null;index" json:"status"`
	StorageLocation string              `gorm:"type:varchar(100);index" json:"storage_location"`
	LocationType    string              `gorm:"type:varchar(30)" json:"location_type,omitempty"`
	IsActive        bool                `gorm:"not null;index" json:"is_active"`
	LastCountDate   *time.Time          `json:"last_count_date,omitempty"`
	LastRestockDate *time.Time          `json:"last_restock_date,omitempty"`

	Transactions []StockTransaction `gorm:"foreignKey:InventoryID;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
}

// NewInventoryRecord builds an active, empty record.
func NewInventoryRecord(itemID uuid.UUID, location string, minQuantity decimal.Decimal, maxQuantity decimal.NullDecimal) (*InventoryRecord, error) {
	if itemID == uuid.Nil {
		return nil, apperror.Validation("model.new_record", "item id is required")
	}
	if err := ValidateThresholds(minQuantity, maxQuantity); err != nil {
		return nil, err
	}

	r := &InventoryRecord{
		ItemID:          itemID,
		Quantity:        decimal.Zero,
		MinQuantity:     minQuantity,
		MaxQuantity:     maxQuantity,
		StorageLocation: strings.TrimSpace(location),
		IsActive:        true,
	}
	r.RefreshStatus()
	return r, nil
}

func ValidateThresholds(minQuantity decimal.Decimal, maxQuantity decimal.NullDecimal) error {
	if minQuantity.IsNegative() {
		return apperror.Validation("model.thresholds", "min quantity cannot be negative, got %s", minQuantity)
	}
	if maxQuantity.Valid && maxQuantity.Decimal.LessThanOrEqual(minQuantity) {
		return apperror.Validation("model.thresholds", "max quantity %s must be greater than min quantity %s", maxQuantity.Decimal, minQuantity)
	}
	return nil
}

func (r *InventoryRecord) RefreshStatus() {
	r.Status = DeriveStatus(r.Quantity, r.MinQuantity, r.MaxQuantity)
}

// SetThresholds replaces min/max and re-derives the status.
func (r *InventoryRecord) SetThresholds(minQuantity decimal.Decimal, maxQuantity decimal.NullDecimal) error {
	if err := ValidateThresholds(minQuantity, maxQuantity); err != nil {
		return err
	}
	r.MinQuantity = minQuantity
	r.MaxQuantity = maxQuantity
	r.RefreshStatus()
	return nil
}

// Apply changes the quantity by a signed amount and returns the transaction
// describing the change. Nothing on the record is touched when validation
// fails. The returned transaction is not persisted.
func (r *InventoryRecord) Apply(amount decimal.Decimal, reason AdjustmentReason, notes string, now time.Time) (*StockTransaction, error) {
	const op = "model.apply"

	if reason.IsZero() {
		return nil, apperror.Validation(op, "adjustment reason is required")
	}
	if amount.IsZero() {
		return nil, apperror.Validation(op, "adjustment amount must be non-zero")
	}
	if !r.IsActive {
		return nil, apperror.Validation(op, "inventory record %s is inactive", r.ID)
	}

	before := r.Quantity
	after := before.Add(amount)
	if after.IsNegative() {
		return nil, apperror.Validation(op, "adjustment would result in negative quantity: %s + %s = %s", before, amount, after)
	}

	r.Quantity = after
	r.RefreshStatus()
	if amount.IsPositive() && reason.IsRestock() {
		r.LastRestockDate = &now
	}
	r.LastCountDate = &now

	return &StockTransaction{
		InventoryID:     r.ID,
		ItemID:          r.ItemID,
		Quantity:        amount.Abs(),
		IsAddition:      amount.IsPositive(),
		TransactionType: reason.Type,
		AdjustmentType:  reason.Adjustment,
		QuantityBefore:  before,
		QuantityAfter:   after,
		Notes:           notes,
		CreatedAt:       now,
	}, nil
}

// Reconcile brings the record in line with a physical count. A count that
// matches only stamps LastCountDate and returns a nil transaction.
func (r *InventoryRecord) Reconcile(actual decimal.Decimal, notes string, now time.Time) (*StockTransaction, error) {
	const op = "model.reconcile"

	if actual.IsNegative() {
		return nil, apperror.Validation(op, "counted quantity cannot be negative, got %s", actual)
	}
	if !r.IsActive {
		return nil, apperror.Validation(op, "inventory record %s is inactive", r.ID)
	}

	difference := actual.Sub(r.Quantity)
	if difference.IsZero() {
		r.LastCountDate = &now
		return nil, nil
	}

	reason := ReasonFor(TxFound)
	if difference.IsNegative() {
		reason = ReasonFor(TxLost)
	}
	return r.Apply(difference, reason, notes, now)
}

// ValidateTransfer checks a move of quantity out of r to target before any
// destination is looked up or created.
func (r *InventoryRecord) ValidateTransfer(target string, quantity decimal.Decimal) error {
	const op = "model.transfer"

	if !quantity.IsPositive() {
		return apperror.Validation(op, "transfer quantity must be positive, got %s", quantity)
	}
	if !r.IsActive {
		return apperror.Validation(op, "inventory record %s is inactive", r.ID)
	}
	if quantity.GreaterThan(r.Quantity) {
		return apperror.Validation(op, "insufficient stock: requested %s, available %s", quantity, r.Quantity)
	}
	if NormalizeLocation(target) == "" {
		return apperror.Validation(op, "target location is required")
	}
	if r.AtLocation(target) {
		return apperror.Validation(op, "target location %q is the source location", target)
	}
	return nil
}

// Sibling returns a new empty record for the same item at location,
// inheriting thresholds and location type.
func (r *InventoryRecord) Sibling(location string) *InventoryRecord {
	s := &InventoryRecord{
		ItemID:          r.ItemID,
		Quantity:        decimal.Zero,
		MinQuantity:     r.MinQuantity,
		MaxQuantity:     r.MaxQuantity,
		StorageLocation: strings.TrimSpace(location),
		LocationType:    r.LocationType,
		IsActive:        true,
	}
	s.RefreshStatus()
	return s
}

func (r *InventoryRecord) AtLocation(location string) bool {
	return NormalizeLocation(r.StorageLocation) == NormalizeLocation(location)
}

// NormalizeLocation is the comparison key for storage locations.
func NormalizeLocation(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}
