package handler

import (
	"net/http"

	"github.com/blues/memberadmin/internal/repository"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	registry *repository.Registry
}

func NewHealthHandler(registry *repository.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// Liveness 进程存活
func (h *HealthHandler) Liveness(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"status":  "ok",
		"service": "memberadmin",
	})
}

// Database 检查所有后端, 任一不可用时返回 503
func (h *HealthHandler) Database(c *gin.Context) {
	statuses, healthy := h.registry.CheckAll(c.Request.Context())
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, Response{Success: false, Message: "backend unavailable", Data: statuses})
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", statuses)
}
