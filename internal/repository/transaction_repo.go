package repository

import (
	"context"
	"time"

	"go-leather-stock/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionRepository has no update or delete: the ledger is append-only.
type TransactionRepository interface {
	Create(tx *gorm.DB, t *model.StockTransaction) error
	FindByInventory(ctx context.Context, inventoryID uuid.UUID, limit int) ([]model.StockTransaction, error)
	FindAll(ctx context.Context, filter TransactionFilter) ([]model.StockTransaction, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

type TransactionFilter struct {
	ItemID uuid.UUID
	Type   model.TransactionType
	From   time.Time
	To     time.Time
	Limit  int
}

// StockMovementData is one day of the movement chart.
type StockMovementData struct {
	Date     string          `json:"date"`
	Inbound  decimal.Decimal `json:"inbound"`
	Outbound decimal.Decimal `json:"outbound"`
}

type DashboardStats struct {
	TotalItems        int64                       `json:"total_items"`
	ActiveRecords     int64                       `json:"active_records"`
	StatusCounts      map[model.StockStatus]int64 `json:"status_counts"`
	TransactionsToday int64                       `json:"transactions_today"`
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) Create(tx *gorm.DB, t *model.StockTransaction) error {
	return tx.Create(t).Error
}

func (r *transactionRepo) FindByInventory(ctx context.Context, inventoryID uuid.UUID, limit int) ([]model.StockTransaction, error) {
	var transactions []model.StockTransaction
	q := r.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindAll(ctx context.Context, filter TransactionFilter) ([]model.StockTransaction, error) {
	var transactions []model.StockTransaction
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.ItemID != uuid.Nil {
		q = q.Where("item_id = ?", filter.ItemID)
	}
	if filter.Type != "" {
		q = q.Where("transaction_type = ?", filter.Type)
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at < ?", filter.To)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error) {
	var transaction model.StockTransaction
	if err := r.db.WithContext(ctx).First(&transaction, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	rows, err := r.db.WithContext(ctx).Model(&model.StockTransaction{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN is_addition THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN is_addition THEN 0 ELSE quantity END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}
	return results, rows.Err()
}

func (r *transactionRepo) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := r.db.WithContext(ctx)
	stats := DashboardStats{StatusCounts: make(map[model.StockStatus]int64)}

	if err := db.Model(&model.Item{}).Where("is_active = ?", true).Count(&stats.TotalItems).Error; err != nil {
		return nil, err
	}

	var counts []struct {
		Status model.StockStatus
		Total  int64
	}
	err := db.Model(&model.InventoryRecord{}).
		Select("status, COUNT(*) as total").
		Where("is_active = ?", true).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		stats.StatusCounts[c.Status] = c.Total
		stats.ActiveRecords += c.Total
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := db.Model(&model.StockTransaction{}).Where("created_at >= ?", midnight).Count(&stats.TransactionsToday).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
