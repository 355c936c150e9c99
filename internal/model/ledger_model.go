package model

import (
	"time"

	"github.com/blues/memberadmin/internal/settlement"
	"github.com/shopspring/decimal"
)

// DailyLedgerModel 日账, 每个期号一条, 创建后不可修改
type DailyLedgerModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	PeriodNumber int       `json:"period_number" gorm:"uniqueIndex;not null"`
	BusinessDate time.Time `json:"business_date" gorm:"type:date;uniqueIndex;not null"`

	// 收入
	RevenueGaming   decimal.Decimal `json:"revenue_gaming" gorm:"type:decimal(18,2);default:0"`
	RevenueServices decimal.Decimal `json:"revenue_services" gorm:"type:decimal(18,2);default:0"`
	RevenueOther    decimal.Decimal `json:"revenue_other" gorm:"type:decimal(18,2);default:0"`

	// 支出 (负数)
	ExpenseOperations decimal.Decimal `json:"expense_operations" gorm:"type:decimal(18,2);default:0"`
	ExpenseStaff      decimal.Decimal `json:"expense_staff" gorm:"type:decimal(18,2);default:0"`
	ExpenseMisc       decimal.Decimal `json:"expense_misc" gorm:"type:decimal(18,2);default:0"`
	ExpenseRent       decimal.Decimal `json:"expense_rent" gorm:"type:decimal(18,2);default:0"`
	ExpenseSystem     decimal.Decimal `json:"expense_system" gorm:"type:decimal(18,2);default:0"`

	NetProfit decimal.Decimal `json:"net_profit" gorm:"type:decimal(18,2);not null"`
	Operator  string          `json:"operator" gorm:"size:64"`
	Remark    string          `json:"remark" gorm:"size:255"`
}

// TableName 自定义表名
func (DailyLedgerModel) TableName() string {
	return "daily_ledgers"
}

// ToEntry 转换为结算模块的日账
func (m DailyLedgerModel) ToEntry() settlement.DailyLedgerEntry {
	return settlement.DailyLedgerEntry{
		Date:         m.BusinessDate,
		PeriodNumber: m.PeriodNumber,
		Revenue: settlement.Revenue{
			Gaming:   m.RevenueGaming,
			Services: m.RevenueServices,
			Other:    m.RevenueOther,
		},
		Expense: settlement.Expense{
			Operations: m.ExpenseOperations,
			Staff:      m.ExpenseStaff,
			Misc:       m.ExpenseMisc,
			Rent:       m.ExpenseRent,
			System:     m.ExpenseSystem,
		},
	}
}

// NewDailyLedgerModel 由日账生成数据库模型, 净利润在这里固化
func NewDailyLedgerModel(entry settlement.DailyLedgerEntry) DailyLedgerModel {
	return DailyLedgerModel{
		PeriodNumber:      entry.PeriodNumber,
		BusinessDate:      entry.Date,
		RevenueGaming:     entry.Revenue.Gaming,
		RevenueServices:   entry.Revenue.Services,
		RevenueOther:      entry.Revenue.Other,
		ExpenseOperations: entry.Expense.Operations,
		ExpenseStaff:      entry.Expense.Staff,
		ExpenseMisc:       entry.Expense.Misc,
		ExpenseRent:       entry.Expense.Rent,
		ExpenseSystem:     entry.Expense.System,
		NetProfit:         settlement.NetProfit(entry),
	}
}

// AccountBalanceModel 账户余额 (cash, bank, receivables)
type AccountBalanceModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BusinessDate time.Time       `json:"business_date" gorm:"type:date;uniqueIndex:idx_balance_date_account;not null"`
	AccountName  string          `json:"account_name" gorm:"size:16;uniqueIndex:idx_balance_date_account;not null"`
	Opening      decimal.Decimal `json:"opening" gorm:"type:decimal(18,2);not null"`
	Closing      decimal.Decimal `json:"closing" gorm:"type:decimal(18,2);not null"`
}

// TableName 自定义表名
func (AccountBalanceModel) TableName() string {
	return "account_balances"
}
