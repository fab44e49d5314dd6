package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/pharmassist/internal/model"
	"github.com/xxxsen/pharmassist/internal/pkg/response"
	"github.com/xxxsen/pharmassist/internal/service"
)

type KPIHandler struct {
	kpi *service.KPIService
}

func NewKPIHandler(kpi *service.KPIService) *KPIHandler {
	return &KPIHandler{kpi: kpi}
}

type kpiResponse struct {
	TenantID string      `json:"pharma_id"`
	Items    interface{} `json:"items"`
}

func (h *KPIHandler) Sales(c *gin.Context) {
	tenantID := c.Param("pharma_id")
	if !checkTenant(c, tenantID) {
		return
	}
	start, err := parseDate(c.Query("from"))
	if err != nil {
		handleError(c, err)
		return
	}
	end, err := parseDate(c.Query("to"))
	if err != nil {
		handleError(c, err)
		return
	}
	items, err := h.kpi.Sales(c.Request.Context(), tenantID, model.DateRange{Start: start, End: end})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, kpiResponse{TenantID: tenantID, Items: items})
}

func (h *KPIHandler) StockAlerts(c *gin.Context) {
	tenantID := c.Param("pharma_id")
	if !checkTenant(c, tenantID) {
		return
	}
	items, err := h.kpi.StockAlerts(c.Request.Context(), tenantID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, kpiResponse{TenantID: tenantID, Items: items})
}

func (h *KPIHandler) PurchaseChanges(c *gin.Context) {
	tenantID := c.Param("pharma_id")
	if !checkTenant(c, tenantID) {
		return
	}
	items, err := h.kpi.PurchaseChanges(c.Request.Context(), tenantID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, kpiResponse{TenantID: tenantID, Items: items})
}
