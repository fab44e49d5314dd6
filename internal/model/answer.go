package model

type Answer struct {
	Answer     string      `json:"answer"`
	Sources    []Source    `json:"sources"`
	KPISummary *KPISummary `json:"kpi_summary"`
}
