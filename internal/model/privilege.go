package model

// Privilege represents a permission that can be granted to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g. "stock:adjust"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivStockView       = "stock:view"
	PrivStockAdjust     = "stock:adjust"
	PrivStockCount      = "stock:count"
	PrivStockTransfer   = "stock:transfer"
	PrivStockManage     = "stock:manage"
	PrivItemCreate      = "item:create"
	PrivItemUpdate      = "item:update"
	PrivPurchaseView    = "purchase:view"
	PrivPurchaseCreate  = "purchase:create"
	PrivPurchaseReceive = "purchase:receive"
	PrivDashboardView   = "dashboard:view"
	PrivUserView        = "user:view"
	PrivUserManage      = "user:manage"
)

var DefaultPrivileges = []Privilege{
	{Code: PrivStockView, Name: "View Stock"},
	{Code: PrivStockAdjust, Name: "Adjust Stock"},
	{Code: PrivStockCount, Name: "Record Physical Count"},
	{Code: PrivStockTransfer, Name: "Transfer Stock"},
	{Code: PrivStockManage, Name: "Manage Inventory Records"},
	{Code: PrivItemCreate, Name: "Create Item"},
	{Code: PrivItemUpdate, Name: "Update Item"},
	{Code: PrivPurchaseView, Name: "View Purchase"},
	{Code: PrivPurchaseCreate, Name: "Create Purchase"},
	{Code: PrivPurchaseReceive, Name: "Receive Purchase"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
	{Code: PrivUserView, Name: "View Staff"},
	{Code: PrivUserManage, Name: "Manage Staff"},
}

func PrivilegeCodes(privileges []Privilege) []string {
	codes := make([]string, len(privileges))
	for i, p := range privileges {
		codes[i] = p.Code
	}
	return codes
}
