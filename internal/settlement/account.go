package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	AccountCash        = "cash"
	AccountBank        = "bank"
	AccountReceivables = "receivables"
)

// Accounts 支持的资金账户
var Accounts = []string{AccountCash, AccountBank, AccountReceivables}

// AccountBalanceSnapshot 账户余额快照, 仅供展示
type AccountBalanceSnapshot struct {
	AccountName string          `json:"accountName"`
	Opening     decimal.Decimal `json:"opening"`
	Closing     decimal.Decimal `json:"closing"`
	Difference  decimal.Decimal `json:"difference"`
	DailyDelta  decimal.Decimal `json:"dailyDelta"`
}

// IsAccount 账户名是否有效
func IsAccount(name string) bool {
	for _, a := range Accounts {
		if a == name {
			return true
		}
	}
	return false
}

// NewAccountBalanceSnapshot Difference = 期末 - 期初, DailyDelta = 期末 - 上一营业日期末
func NewAccountBalanceSnapshot(name string, opening, closing, previousClosing decimal.Decimal) (AccountBalanceSnapshot, error) {
	if !IsAccount(name) {
		return AccountBalanceSnapshot{}, fmt.Errorf("%q: %w", name, ErrUnknownAccount)
	}
	return AccountBalanceSnapshot{
		AccountName: name,
		Opening:     opening,
		Closing:     closing,
		Difference:  closing.Sub(opening),
		DailyDelta:  closing.Sub(previousClosing),
	}, nil
}
