package model

type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleOwner       = "OWNER"
	RoleStockKeeper = "STOCK_KEEPER"
)

var DefaultRoles = []Role{
	{
		Code:        RoleOwner,
		Name:        "Workshop Owner",
		Description: "Full access to stock, items, purchases and staff accounts",
	},
	{
		Code:        RoleStockKeeper,
		Name:        "Stock Keeper",
		Description: "Day-to-day stock movements without record management",
	},
}

// StockKeeperPrivileges lists what RoleStockKeeper is granted at seed time.
var StockKeeperPrivileges = []string{
	PrivStockView, PrivStockAdjust, PrivStockCount, PrivStockTransfer,
	PrivPurchaseView, PrivPurchaseReceive, PrivDashboardView,
}
