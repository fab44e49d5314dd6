package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/pharmassist/internal/model"
	"github.com/xxxsen/pharmassist/internal/pkg/errcode"
	"github.com/xxxsen/pharmassist/internal/pkg/response"
	"github.com/xxxsen/pharmassist/internal/service"
)

type RAGHandler struct {
	rag         *service.RAGService
	uploadLimit int64
}

func NewRAGHandler(rag *service.RAGService, uploadLimit int64) *RAGHandler {
	if uploadLimit <= 0 {
		uploadLimit = DefaultUploadLimit
	}
	return &RAGHandler{rag: rag, uploadLimit: uploadLimit}
}

type indexRequest struct {
	TenantID string `json:"pharma_id"`
	Path     string `json:"path"`
}

type indexResponse struct {
	Status  string              `json:"status"`
	Indexed int                 `json:"indexed"`
	Errors  []model.IngestError `json:"errors"`
}

func newIndexResponse(res *model.IngestResult) indexResponse {
	errs := res.Errors
	if errs == nil {
		errs = []model.IngestError{}
	}
	return indexResponse{Status: "ok", Indexed: res.Inserted, Errors: errs}
}

func (h *RAGHandler) Index(c *gin.Context) {
	var req indexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if !checkTenant(c, req.TenantID) {
		return
	}
	res, err := h.rag.Index(c.Request.Context(), req.TenantID, req.Path)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, newIndexResponse(res))
}

func (h *RAGHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadLimit)
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "invalid upload, max size "+formatUploadLimit(h.uploadLimit))
		return
	}
	tenantID := c.PostForm("pharma_id")
	if !checkTenant(c, tenantID) {
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		response.Error(c, errcode.ErrInvalidFile, "files are required")
		return
	}
	files := make([]service.UploadFile, 0, len(headers))
	defer func() {
		for _, f := range files {
			_ = f.Reader.Close()
		}
	}()
	for _, header := range headers {
		opened, err := header.Open()
		if err != nil {
			response.Error(c, errcode.ErrInvalidFile, "failed to open file")
			return
		}
		files = append(files, service.UploadFile{Name: header.Filename, Size: header.Size, Reader: opened})
	}
	res, err := h.rag.Upload(c.Request.Context(), tenantID, files)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, newIndexResponse(res))
}

type askRequest struct {
	TenantID string `json:"pharma_id"`
	Question string `json:"question"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

func (h *RAGHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if !checkTenant(c, req.TenantID) {
		return
	}
	start, err := parseDate(req.Start)
	if err != nil {
		handleError(c, err)
		return
	}
	end, err := parseDate(req.End)
	if err != nil {
		handleError(c, err)
		return
	}
	ans, err := h.rag.Ask(c.Request.Context(), req.TenantID, req.Question, model.DateRange{Start: start, End: end})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, ans)
}
