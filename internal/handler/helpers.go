package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pharmassist/internal/middleware"
	"github.com/xxxsen/pharmassist/internal/pkg/errcode"
	appErr "github.com/xxxsen/pharmassist/internal/pkg/errors"
	"github.com/xxxsen/pharmassist/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("request_id", c.GetString(middleware.ContextRequestIDKey)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, errcode.ErrForbidden, "forbidden")
	case appErr.IsNotFound(err):
		response.Error(c, errcode.ErrNotFound, err.Error())
	case errors.Is(err, appErr.ErrInvalid), errors.Is(err, appErr.ErrUnsupportedFormat):
		response.Error(c, errcode.ErrInvalid, err.Error())
	case appErr.IsBackend(err):
		response.Error(c, errcode.ErrBackendFailed, "generation backend failed")
	case appErr.IsStore(err):
		response.Error(c, errcode.ErrStoreUnavailable, "document store unavailable")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}

// checkTenant aborts with 403 when the token tenant differs from tenantID.
func checkTenant(c *gin.Context, tenantID string) bool {
	if middleware.TenantAllowed(c, tenantID) {
		return true
	}
	handleError(c, fmt.Errorf("%w: token is not valid for pharma_id %s", appErr.ErrForbidden, tenantID))
	return false
}

// parseDate reads an optional YYYY-MM-DD value.
func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", appErr.ErrInvalid, value)
	}
	return &t, nil
}
