package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/xxxsen/pharmassist/internal/model"
	"github.com/xxxsen/pharmassist/internal/pkg/dbutil"
)

// SummaryLimit caps every list in a KPI summary.
const SummaryLimit = 5

const isoTimestamp = "2006-01-02T15:04:05.999999-07:00"

type KPIRepo struct {
	db *sqlx.DB
}

func NewKPIRepo(db *sql.DB) *KPIRepo {
	return &KPIRepo{db: sqlx.NewDb(db, "postgres")}
}

// SalesKPI lists daily sales newest first. limit <= 0 returns every row.
func (r *KPIRepo) SalesKPI(ctx context.Context, tenantID string, dates model.DateRange, limit int) ([]model.SalesKPI, error) {
	where := map[string]interface{}{
		"pharma_id": tenantID,
		"_orderby":  "sales_date desc",
	}
	if dates.Start != nil {
		where["sales_date >="] = dates.Start.Format(time.DateOnly)
	}
	if dates.End != nil {
		where["sales_date <="] = dates.End.Format(time.DateOnly)
	}
	if limit > 0 {
		where["_limit"] = []uint{0, uint(limit)}
	}
	sqlStr, args, err := builder.BuildSelect("mart.sales_daily", where,
		[]string{"sales_date", "gross_revenue", "estimated_margin", "ticket_count"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.SalesKPI, 0)
	for rows.Next() {
		var (
			item      model.SalesKPI
			salesDate time.Time
		)
		if err := rows.Scan(&salesDate, &item.GrossRevenue, &item.EstimatedMargin, &item.TicketCount); err != nil {
			return nil, err
		}
		item.SalesDate = salesDate.Format(time.DateOnly)
		items = append(items, item)
	}
	return items, rows.Err()
}

type stockRow struct {
	ProductCode  string          `db:"product_code"`
	ProductName  sql.NullString  `db:"product_name"`
	StockQty     sql.NullFloat64 `db:"stock_qty"`
	CoverageDays sql.NullFloat64 `db:"coverage_days"`
	Status       sql.NullString  `db:"status"`
}

// StockAlerts lists stock positions, largest coverage first.
func (r *KPIRepo) StockAlerts(ctx context.Context, tenantID string, limit int) ([]model.StockAlert, error) {
	const query = `
		SELECT product_code, product_name, stock_qty, coverage_days, status
		FROM mart.stock_status
		WHERE pharma_id = $1
		ORDER BY coverage_days DESC NULLS LAST
		LIMIT $2
	`
	var rows []stockRow
	if err := r.db.SelectContext(ctx, &rows, query, tenantID, sqlLimit(limit)); err != nil {
		return nil, err
	}
	items := make([]model.StockAlert, 0, len(rows))
	for _, row := range rows {
		items = append(items, model.StockAlert{
			ProductCode:  row.ProductCode,
			ProductName:  row.ProductName.String,
			StockQty:     nullFloat(row.StockQty),
			CoverageDays: nullFloat(row.CoverageDays),
			Status:       row.Status.String,
		})
	}
	return items, nil
}

type purchaseRow struct {
	ProductCode   string          `db:"product_code"`
	PreviousPrice sql.NullFloat64 `db:"previous_price"`
	LatestPrice   sql.NullFloat64 `db:"latest_price"`
	ChangePct     sql.NullFloat64 `db:"change_pct"`
	DetectedAt    sql.NullTime    `db:"detected_at"`
}

// PurchaseChanges lists detected purchase price changes, newest first.
func (r *KPIRepo) PurchaseChanges(ctx context.Context, tenantID string, limit int) ([]model.PurchaseChange, error) {
	const query = `
		SELECT product_code, previous_price, latest_price, change_pct, detected_at
		FROM mart.purchase_price_changes
		WHERE pharma_id = $1
		ORDER BY detected_at DESC
		LIMIT $2
	`
	var rows []purchaseRow
	if err := r.db.SelectContext(ctx, &rows, query, tenantID, sqlLimit(limit)); err != nil {
		return nil, err
	}
	items := make([]model.PurchaseChange, 0, len(rows))
	for _, row := range rows {
		item := model.PurchaseChange{
			ProductCode:   row.ProductCode,
			PreviousPrice: nullFloat(row.PreviousPrice),
			LatestPrice:   nullFloat(row.LatestPrice),
			ChangePct:     nullFloat(row.ChangePct),
		}
		if row.DetectedAt.Valid {
			ts := row.DetectedAt.Time.Format(isoTimestamp)
			item.DetectedAt = &ts
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *KPIRepo) Summarize(ctx context.Context, tenantID string, dates model.DateRange) (*model.KPISummary, error) {
	sales, err := r.SalesKPI(ctx, tenantID, dates, SummaryLimit)
	if err != nil {
		return nil, err
	}
	stock, err := r.StockAlerts(ctx, tenantID, SummaryLimit)
	if err != nil {
		return nil, err
	}
	purchases, err := r.PurchaseChanges(ctx, tenantID, SummaryLimit)
	if err != nil {
		return nil, err
	}
	return &model.KPISummary{Sales: sales, StockAlerts: stock, PurchaseChanges: purchases}, nil
}

// sqlLimit maps a non-positive limit to NULL, which postgres reads as no limit.
func sqlLimit(limit int) interface{} {
	if limit <= 0 {
		return nil
	}
	return limit
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// EmptyKPI serves deployments without the KPI mart.
type EmptyKPI struct{}

func (EmptyKPI) Summarize(context.Context, string, model.DateRange) (*model.KPISummary, error) {
	return &model.KPISummary{}, nil
}

func (EmptyKPI) SalesKPI(context.Context, string, model.DateRange, int) ([]model.SalesKPI, error) {
	return []model.SalesKPI{}, nil
}

func (EmptyKPI) StockAlerts(context.Context, string, int) ([]model.StockAlert, error) {
	return []model.StockAlert{}, nil
}

func (EmptyKPI) PurchaseChanges(context.Context, string, int) ([]model.PurchaseChange, error) {
	return []model.PurchaseChange{}, nil
}
