package handler

import (
	"net/http"

	"github.com/blues/memberadmin/internal/logic"
	"github.com/gin-gonic/gin"
)

type PointHandler struct {
	pointLogic *logic.PointLogic
}

func NewPointHandler(l *logic.PointLogic) *PointHandler {
	return &PointHandler{pointLogic: l}
}

// GetPointTypes 积分类型
func (h *PointHandler) GetPointTypes(c *gin.Context) {
	types, err := h.pointLogic.ListTypes(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", types)
}

// CreatePointType 新增积分类型
func (h *PointHandler) CreatePointType(c *gin.Context) {
	var req logic.CreatePointTypeRequest
	if !bindJSON(c, &req) {
		return
	}
	pt, err := h.pointLogic.CreateType(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "积分类型创建成功", pt)
}

// AdjustPoints 手工调整积分
func (h *PointHandler) AdjustPoints(c *gin.Context) {
	var req logic.AdjustPointsRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Operator = operator(c)

	record, err := h.pointLogic.Adjust(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "积分调整成功", record)
}

// GetRedemptionRules 兑换规则
func (h *PointHandler) GetRedemptionRules(c *gin.Context) {
	rules, err := h.pointLogic.ListRules(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", rules)
}

// CreateRedemptionRule 新增兑换规则
func (h *PointHandler) CreateRedemptionRule(c *gin.Context) {
	var req logic.CreateRedemptionRuleRequest
	if !bindJSON(c, &req) {
		return
	}
	rule, err := h.pointLogic.CreateRule(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "兑换规则创建成功", rule)
}

// RedeemPoints 积分兑换
func (h *PointHandler) RedeemPoints(c *gin.Context) {
	var req logic.RedeemRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Operator = operator(c)

	record, err := h.pointLogic.Redeem(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "积分兑换成功", record)
}
