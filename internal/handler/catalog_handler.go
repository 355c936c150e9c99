package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/memberadmin/internal/logic"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogLogic *logic.CatalogLogic
}

func NewCatalogHandler(l *logic.CatalogLogic) *CatalogHandler {
	return &CatalogHandler{catalogLogic: l}
}

// GetFundCategories 资金分类
func (h *CatalogHandler) GetFundCategories(c *gin.Context) {
	categories, err := h.catalogLogic.ListFundCategories(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", categories)
}

// GetFunds 资金记录
func (h *CatalogHandler) GetFunds(c *gin.Context) {
	categoryID, _ := strconv.ParseInt(c.Query("category_id"), 10, 64)
	page := pageFromQuery(c)

	funds, total, err := h.catalogLogic.ListFunds(c.Request.Context(), logic.FundFilter{
		CategoryId: categoryID,
		From:       c.Query("from"),
		To:         c.Query("to"),
		Page:       page,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", ListResponse{Items: funds, Pagination: NewPagination(page, total)})
}

// CreateFund 新增资金记录
func (h *CatalogHandler) CreateFund(c *gin.Context) {
	var req logic.CreateFundRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Operator = operator(c)

	fund, err := h.catalogLogic.CreateFund(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "资金记录创建成功", fund)
}

// GetAgents 代理列表
func (h *CatalogHandler) GetAgents(c *gin.Context) {
	agents, err := h.catalogLogic.ListAgents(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", agents)
}

// CreateAgent 新增代理
func (h *CatalogHandler) CreateAgent(c *gin.Context) {
	var req logic.CreateAgentRequest
	if !bindJSON(c, &req) {
		return
	}
	agent, err := h.catalogLogic.CreateAgent(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "代理创建成功", agent)
}
