package model

import (
	"encoding/json"
	"time"
)

type SalesKPI struct {
	SalesDate       string   `json:"sales_date"`
	GrossRevenue    *float64 `json:"gross_revenue"`
	EstimatedMargin *float64 `json:"estimated_margin"`
	TicketCount     *int64   `json:"ticket_count"`
}

type StockAlert struct {
	ProductCode  string   `json:"product_code"`
	ProductName  string   `json:"product_name"`
	StockQty     *float64 `json:"stock_qty"`
	CoverageDays *float64 `json:"coverage_days"`
	Status       string   `json:"status"`
}

type PurchaseChange struct {
	ProductCode   string   `json:"product_code"`
	PreviousPrice *float64 `json:"previous_price"`
	LatestPrice   *float64 `json:"latest_price"`
	ChangePct     *float64 `json:"change_pct"`
	DetectedAt    *string  `json:"detected_at"`
}

type KPISummary struct {
	Sales           []SalesKPI       `json:"sales"`
	StockAlerts     []StockAlert     `json:"stock_alerts"`
	PurchaseChanges []PurchaseChange `json:"purchase_changes"`
}

type kpiSummaryJSON KPISummary

// MarshalJSON renders missing lists as [] rather than null.
func (s KPISummary) MarshalJSON() ([]byte, error) {
	out := kpiSummaryJSON(s)
	if out.Sales == nil {
		out.Sales = []SalesKPI{}
	}
	if out.StockAlerts == nil {
		out.StockAlerts = []StockAlert{}
	}
	if out.PurchaseChanges == nil {
		out.PurchaseChanges = []PurchaseChange{}
	}
	return json.Marshal(out)
}

// String renders the summary as compact JSON, the form embedded in prompts
// and fallback answers.
func (s *KPISummary) String() string {
	if s == nil {
		return "{}"
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// DateRange bounds a KPI query. Nil ends are open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}
