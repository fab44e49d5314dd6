package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pharmassist/internal/pkg/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health always answers; database reports whether the document store responds.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	ok := true
	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			logutil.GetLogger(ctx).Warn("store ping failed", zap.Error(err))
			ok = false
		}
	}
	response.Success(c, gin.H{"status": "ok", "database": ok})
}
