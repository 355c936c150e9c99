package handler

import (
	"net/http"

	"github.com/blues/memberadmin/internal/logic"
	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	memberLogic *logic.MemberLogic
	pointLogic  *logic.PointLogic
}

func NewMemberHandler(members *logic.MemberLogic, points *logic.PointLogic) *MemberHandler {
	return &MemberHandler{memberLogic: members, pointLogic: points}
}

// CreateMember 新增会员
func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req logic.CreateMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.memberLogic.Create(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "会员创建成功", member)
}

// GetMembers 会员列表
func (h *MemberHandler) GetMembers(c *gin.Context) {
	page := pageFromQuery(c)
	members, total, err := h.memberLogic.List(c.Request.Context(), logic.MemberFilter{
		Keyword: c.Query("keyword"),
		Status:  c.Query("status"),
		Page:    page,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", ListResponse{Items: members, Pagination: NewPagination(page, total)})
}

// GetMember 会员详情
func (h *MemberHandler) GetMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	member, err := h.memberLogic.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", member)
}

// UpdateMember 修改会员
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req logic.UpdateMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.memberLogic.Update(c.Request.Context(), id, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "会员更新成功", member)
}

// DeleteMember 删除会员
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.memberLogic.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "会员已删除", gin.H{"id": id})
}

// GetMemberPoints 会员积分余额和最近流水
func (h *MemberHandler) GetMemberPoints(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	balances, err := h.pointLogic.Balances(ctx, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	page := pageFromQuery(c)
	history, total, err := h.pointLogic.History(ctx, id, page)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"memberId": id,
		"balances": balances,
		"history":  ListResponse{Items: history, Pagination: NewPagination(page, total)},
	})
}
