package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseStatus string

const (
	PurchaseDraft     PurchaseStatus = "DRAFT"
	PurchaseOrdered   PurchaseStatus = "ORDERED"
	PurchaseDelivered PurchaseStatus = "DELIVERED"
	PurchaseCancelled PurchaseStatus = "CANCELLED"
)

type Purchase struct {
	BaseModel
	Supplier          string         `gorm:"type:varchar(255);not null" json:"supplier" validate:"required"`
	Reference         string         `gorm:"type:varchar(100);index" json:"reference"`
	Status            PurchaseStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ReceivingLocation string         `gorm:"type:varchar(100)" json:"receiving_location"`
	OrderedAt         *time.Time     `json:"ordered_at,omitempty"`
	DeliveredAt       *time.Time     `json:"delivered_at,omitempty"`
	Notes             string         `gorm:"type:text" json:"notes,omitempty"`

	Items []PurchaseItem `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE" json:"items" validate:"required,min=1,dive"`
}

type PurchaseItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	PurchaseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	ItemID     uuid.UUID       `gorm:"type:uuid;not null" json:"item_id" validate:"uuid_required"`
	Item       *Item           `gorm:"foreignKey:ItemID" json:"item,omitempty" validate:"-"`
	Quantity   decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price"`

	// InventoryID is the record the line was received into.
	InventoryID *uuid.UUID `gorm:"type:uuid" json:"inventory_id,omitempty"`
}

func (p *Purchase) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range p.Items {
		total = total.Add(line.Quantity.Mul(line.UnitPrice))
	}
	return total
}

// CanDeliver reports whether stock may still be received against p.
func (p *Purchase) CanDeliver() bool {
	return p.Status == PurchaseDraft || p.Status == PurchaseOrdered
}
