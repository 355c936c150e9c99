package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/memberadmin/internal/logic"
	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	transactionLogic *logic.TransactionLogic
}

func NewTransactionHandler(l *logic.TransactionLogic) *TransactionHandler {
	return &TransactionHandler{transactionLogic: l}
}

// CreateTransaction 新增交易
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req logic.CreateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Operator = operator(c)

	record, err := h.transactionLogic.Create(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "交易创建成功", record)
}

// GetTransactions 交易列表
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	memberID, _ := strconv.ParseInt(c.Query("member_id"), 10, 64)
	page := pageFromQuery(c)

	records, total, err := h.transactionLogic.List(c.Request.Context(), logic.TransactionFilter{
		MemberId: memberID,
		Type:     c.Query("type"),
		Status:   c.Query("status"),
		From:     c.Query("from"),
		To:       c.Query("to"),
		Page:     page,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", ListResponse{Items: records, Pagination: NewPagination(page, total)})
}

// GetTransaction 交易详情
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	record, err := h.transactionLogic.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", record)
}

// VoidTransaction 作废交易
func (h *TransactionHandler) VoidTransaction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	record, err := h.transactionLogic.Void(c.Request.Context(), id, operator(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "交易已作废", record)
}
