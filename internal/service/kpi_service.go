package service

import (
	"context"

	"github.com/xxxsen/pharmassist/internal/model"
)

// KPIProvider reads the KPI mart for one tenant.
type KPIProvider interface {
	Summarize(ctx context.Context, tenantID string, dates model.DateRange) (*model.KPISummary, error)
	SalesKPI(ctx context.Context, tenantID string, dates model.DateRange, limit int) ([]model.SalesKPI, error)
	StockAlerts(ctx context.Context, tenantID string, limit int) ([]model.StockAlert, error)
	PurchaseChanges(ctx context.Context, tenantID string, limit int) ([]model.PurchaseChange, error)
}

type KPIService struct {
	kpi KPIProvider
}

func NewKPIService(kpi KPIProvider) *KPIService {
	return &KPIService{kpi: kpi}
}

func (s *KPIService) Sales(ctx context.Context, tenantID string, dates model.DateRange) ([]model.SalesKPI, error) {
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}
	return s.kpi.SalesKPI(ctx, tenantID, dates, 0)
}

func (s *KPIService) StockAlerts(ctx context.Context, tenantID string) ([]model.StockAlert, error) {
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}
	return s.kpi.StockAlerts(ctx, tenantID, 0)
}

func (s *KPIService) PurchaseChanges(ctx context.Context, tenantID string) ([]model.PurchaseChange, error) {
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}
	return s.kpi.PurchaseChanges(ctx, tenantID, 0)
}
