package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/pharmassist/internal/pkg/errcode"
	"github.com/xxxsen/pharmassist/internal/pkg/response"
	"github.com/xxxsen/pharmassist/internal/service"
)

type TableHandler struct {
	tables *service.TableService
}

func NewTableHandler(tables *service.TableService) *TableHandler {
	return &TableHandler{tables: tables}
}

func (h *TableHandler) List(c *gin.Context) {
	data, err := h.tables.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, data)
}

type tableRequest struct {
	Description string `json:"description"`
}

func (h *TableHandler) Save(c *gin.Context) {
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	table := c.Param("table")
	desc, err := h.tables.Save(c.Request.Context(), table, req.Description)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"table": table, "description": desc})
}
