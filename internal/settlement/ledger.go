package settlement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Revenue 收入分类
type Revenue struct {
	Gaming   decimal.Decimal `json:"gaming"`
	Services decimal.Decimal `json:"services"`
	Other    decimal.Decimal `json:"other"`
}

// Total 收入合计, 只统计固定的三个分类
func (r Revenue) Total() decimal.Decimal {
	return r.Gaming.Add(r.Services).Add(r.Other)
}

// Expense 支出分类, 金额由调用方预先取负
type Expense struct {
	Operations decimal.Decimal `json:"operations"`
	Staff      decimal.Decimal `json:"staff"`
	Misc       decimal.Decimal `json:"misc"`
	Rent       decimal.Decimal `json:"rent"`
	System     decimal.Decimal `json:"system"`
}

// Total 支出合计 (负数)
func (e Expense) Total() decimal.Decimal {
	return e.Operations.Add(e.Staff).Add(e.Misc).Add(e.Rent).Add(e.System)
}

// DailyLedgerEntry 日账, 营业日结束后不可修改
type DailyLedgerEntry struct {
	Date         time.Time `json:"date"`
	PeriodNumber int       `json:"periodNumber"`
	Revenue      Revenue   `json:"revenue"`
	Expense      Expense   `json:"expense"`
}

// DailySummary 日账汇总
type DailySummary struct {
	RevenueTotal decimal.Decimal `json:"revenueTotal"`
	ExpenseTotal decimal.Decimal `json:"expenseTotal"`
	NetProfit    decimal.Decimal `json:"netProfit"`
}

// Summarize 汇总收入、支出和净利润
func Summarize(entry DailyLedgerEntry) DailySummary {
	revenue := entry.Revenue.Total()
	expense := entry.Expense.Total()
	return DailySummary{
		RevenueTotal: revenue,
		ExpenseTotal: expense,
		NetProfit:    revenue.Add(expense),
	}
}

// NetProfit 日净利润
func NetProfit(entry DailyLedgerEntry) decimal.Decimal {
	return Summarize(entry).NetProfit
}
