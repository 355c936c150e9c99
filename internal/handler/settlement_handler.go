package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/memberadmin/internal/logger"
	"github.com/blues/memberadmin/internal/logic"
	"github.com/gin-gonic/gin"
)

const (
	ActionLatestPeriod = "latest-period"
	ActionPreview      = "preview"
)

type SettlementHandler struct {
	settlementLogic *logic.SettlementLogic
}

func NewSettlementHandler(l *logic.SettlementLogic) *SettlementHandler {
	return &SettlementHandler{settlementLogic: l}
}

// GetSettlements 按 action 返回当前期号、周期预览或结算列表
func (h *SettlementHandler) GetSettlements(c *gin.Context) {
	switch c.Query("action") {
	case ActionLatestPeriod:
		h.latestPeriod(c)
	case ActionPreview:
		h.preview(c)
	case "":
		h.list(c)
	default:
		ErrorResponse(c, http.StatusBadRequest, "unknown action "+strconv.Quote(c.Query("action")))
	}
}

func (h *SettlementHandler) latestPeriod(c *gin.Context) {
	n, err := h.settlementLogic.LatestPeriod(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", gin.H{"periodNumber": n})
}

// preview 不传 cycle 时预览当前周期
func (h *SettlementHandler) preview(c *gin.Context) {
	var cycle int
	if raw := c.Query("cycle"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			ErrorResponse(c, http.StatusBadRequest, "invalid cycle "+strconv.Quote(raw))
			return
		}
		cycle = n
	}
	preview, err := h.settlementLogic.Preview(c.Request.Context(), cycle)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", preview)
}

func (h *SettlementHandler) list(c *gin.Context) {
	page := pageFromQuery(c)
	dividends, total, err := h.settlementLogic.List(c.Request.Context(), page)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", ListResponse{Items: dividends, Pagination: NewPagination(page, total)})
}

// Calculate 按给定利润临时计算, 不保存
func (h *SettlementHandler) Calculate(c *gin.Context) {
	var req logic.CalculateRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.settlementLogic.Calculate(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", result)
}

// Settle 结算周期, 通知在后台发送
func (h *SettlementHandler) Settle(c *gin.Context) {
	var req logic.SettleRequest
	if !bindJSON(c, &req) {
		return
	}
	req.SettledBy = operator(c)

	dividend, err := h.settlementLogic.Settle(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "结算成功", dividend)
}

// GetSettlement 结算详情
func (h *SettlementHandler) GetSettlement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	dividend, err := h.settlementLogic.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", dividend)
}

// ExportSettlement 导出 xlsx
func (h *SettlementHandler) ExportSettlement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	f, filename, err := h.settlementLogic.Export(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		logger.Error("Failed to write export for dividend %d: %v", id, err)
	}
}
