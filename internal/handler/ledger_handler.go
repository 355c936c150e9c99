package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/memberadmin/internal/logic"
	"github.com/blues/memberadmin/internal/settlement"
	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	ledgerLogic *logic.LedgerLogic
}

func NewLedgerHandler(l *logic.LedgerLogic) *LedgerHandler {
	return &LedgerHandler{ledgerLogic: l}
}

// LedgerResponse 日账及其汇总
type LedgerResponse struct {
	Ledger     interface{}             `json:"ledger"`
	Summary    settlement.DailySummary `json:"summary"`
	Cycle      int                     `json:"cycle"`
	DayOfCycle int                     `json:"dayOfCycle"`
}

func toLedgerResponse(entry settlement.DailyLedgerEntry, ledger interface{}) LedgerResponse {
	return LedgerResponse{
		Ledger:     ledger,
		Summary:    settlement.Summarize(entry),
		Cycle:      settlement.CycleNumber(entry.PeriodNumber),
		DayOfCycle: settlement.DayOfCycle(entry.PeriodNumber),
	}
}

// CreateLedger 录入日账
func (h *LedgerHandler) CreateLedger(c *gin.Context) {
	var req logic.CreateLedgerRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Operator = operator(c)

	ledger, err := h.ledgerLogic.Create(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "日账录入成功", toLedgerResponse(ledger.ToEntry(), ledger))
}

// GetLedgers 日账列表
func (h *LedgerHandler) GetLedgers(c *gin.Context) {
	cycle, _ := strconv.Atoi(c.Query("cycle"))
	page := pageFromQuery(c)

	ledgers, total, err := h.ledgerLogic.List(c.Request.Context(), logic.LedgerFilter{Cycle: cycle, Page: page})
	if err != nil {
		HandleError(c, err)
		return
	}

	items := make([]LedgerResponse, len(ledgers))
	for i := range ledgers {
		items[i] = toLedgerResponse(ledgers[i].ToEntry(), &ledgers[i])
	}
	SuccessResponse(c, http.StatusOK, "ok", ListResponse{Items: items, Pagination: NewPagination(page, total)})
}

// GetLedger 按期号查询日账
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	period, err := strconv.Atoi(c.Param("period"))
	if err != nil || period < 1 {
		ErrorResponse(c, http.StatusBadRequest, "invalid period")
		return
	}

	ledger, err := h.ledgerLogic.Get(c.Request.Context(), period)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", toLedgerResponse(ledger.ToEntry(), ledger))
}

// RecordBalances 录入账户余额
func (h *LedgerHandler) RecordBalances(c *gin.Context) {
	var req logic.RecordBalancesRequest
	if !bindJSON(c, &req) {
		return
	}
	snapshots, err := h.ledgerLogic.RecordBalances(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "账户余额已保存", snapshots)
}

// GetBalances 查询某日账户余额
func (h *LedgerHandler) GetBalances(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		ErrorResponse(c, http.StatusBadRequest, "date is required")
		return
	}
	snapshots, err := h.ledgerLogic.Balances(c.Request.Context(), date)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", snapshots)
}
