package service

import (
	"context"
	"time"

	"go-leather-stock/internal/model"
	"go-leather-stock/internal/repository"

	"go.uber.org/zap"
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
	// GetAlerts lists active records that are low or out of stock.
	GetAlerts(ctx context.Context) ([]model.InventoryRecord, error)
}

type dashboardService struct {
	txRepo  repository.TransactionRepository
	records repository.InventoryRepository
	log     *zap.Logger
}

func NewDashboardService(txRepo repository.TransactionRepository, records repository.InventoryRepository, log *zap.Logger) DashboardService {
	return &dashboardService{txRepo: txRepo, records: records, log: log.Named("dashboard")}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.txRepo.GetStockMovement(ctx, startDate, endDate)
	if err != nil {
		return nil, failed(s.log, "dashboard.stock_movement", err)
	}
	return data, nil
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	stats, err := s.txRepo.GetDashboardStats(ctx)
	if err != nil {
		return nil, failed(s.log, "dashboard.stats", err)
	}
	return stats, nil
}

func (s *dashboardService) GetAlerts(ctx context.Context) ([]model.InventoryRecord, error) {
	var alerts []model.InventoryRecord
	for _, status := range []model.StockStatus{model.StatusOutOfStock, model.StatusLowStock} {
		records, err := s.records.FindAll(ctx, repository.InventoryFilter{Status: status, ActiveOnly: true})
		if err != nil {
			return nil, failed(s.log, "dashboard.alerts", err)
		}
		alerts = append(alerts, records...)
	}
	return alerts, nil
}
