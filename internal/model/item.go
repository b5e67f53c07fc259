package model

import "github.com/shopspring/decimal"

type ItemKind string

const (
	KindMaterial ItemKind = "MATERIAL"
	KindLeather  ItemKind = "LEATHER"
	KindHardware ItemKind = "HARDWARE"
	KindTool     ItemKind = "TOOL"
	KindProduct  ItemKind = "PRODUCT"
)

// Item is anything the workshop keeps stock of. Its Status is a rollup of
// its active inventory records and is maintained by the service layer.
type Item struct {
	BaseModel
	SKU           string              `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required,max=50"`
	Name          string              `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Kind          ItemKind            `gorm:"type:varchar(20);not null;index" json:"kind" validate:"required,oneof=MATERIAL LEATHER HARDWARE TOOL PRODUCT"`
	Unit          string              `gorm:"type:varchar(20)" json:"unit"`
	MinStockLevel decimal.NullDecimal `gorm:"type:numeric(14,3)" json:"min_stock_level"`
	Status        StockStatus         `gorm:"type:varchar(20);not null" json:"status"`
	IsActive      bool                `gorm:"not null" json:"is_active"`

	Inventory []InventoryRecord `gorm:"foreignKey:ItemID" json:"inventory,omitempty"`
}

// LowStockThreshold returns the item's own threshold when it has one.
func (i *Item) LowStockThreshold(fallback decimal.Decimal) decimal.Decimal {
	if i.MinStockLevel.Valid && i.MinStockLevel.Decimal.IsPositive() {
		return i.MinStockLevel.Decimal
	}
	return fallback
}

// RollupStatus derives the item status from the total on hand across its
// active records.
func (i *Item) RollupStatus(records []InventoryRecord, fallback decimal.Decimal) StockStatus {
	total := decimal.Zero
	for _, r := range records {
		if r.IsActive && r.ItemID == i.ID {
			total = total.Add(r.Quantity)
		}
	}
	return DeriveStatus(total, i.LowStockThreshold(fallback), decimal.NullDecimal{})
}
