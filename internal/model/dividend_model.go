package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DividendModel 分红结算记录, 每个周期一条
type DividendModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CycleNumber int       `json:"cycle_number" gorm:"uniqueIndex;not null"`
	StartDate   time.Time `json:"start_date" gorm:"type:date"`

	Day1Profit        decimal.Decimal `json:"day1_profit" gorm:"type:decimal(18,2)"`
	Day2Profit        decimal.Decimal `json:"day2_profit" gorm:"type:decimal(18,2)"`
	Day3Profit        decimal.Decimal `json:"day3_profit" gorm:"type:decimal(18,2)"`
	TotalProfit       decimal.Decimal `json:"total_profit" gorm:"type:decimal(18,2);not null"`
	TotalShares       decimal.Decimal `json:"total_shares" gorm:"type:decimal(10,1);not null"`
	ValuePerShare     decimal.Decimal `json:"value_per_share" gorm:"type:decimal(38,16);not null"`
	ValuePerHalfShare decimal.Decimal `json:"value_per_half_share" gorm:"type:decimal(38,16);not null"`

	SettledBy string    `json:"settled_by" gorm:"size:64"`
	SettledAt time.Time `json:"settled_at"`

	ChannelId    string       `json:"channel_id" gorm:"size:64"`
	NotifyStatus NotifyStatus `json:"notify_status" gorm:"size:16;default:'pending'"`
	NotifyError  string       `json:"notify_error" gorm:"size:255"`
	NotifiedAt   *time.Time   `json:"notified_at"`

	Payouts []DividendPayoutModel `json:"payouts,omitempty" gorm:"foreignKey:DividendId"`
}

// NotifyStatus 分红通知状态
type NotifyStatus string

const (
	NotifyStatusPending NotifyStatus = "pending" // 待发送
	NotifyStatusSent    NotifyStatus = "sent"    // 已发送
	NotifyStatusFailed  NotifyStatus = "failed"  // 发送失败
	NotifyStatusSkipped NotifyStatus = "skipped" // 未配置频道
)

// TableName 自定义表名
func (DividendModel) TableName() string {
	return "dividends"
}

// DividendPayoutModel 会员分红明细
type DividendPayoutModel struct {
	Id         int64           `json:"id" gorm:"primaryKey"`
	DividendId int64           `json:"dividend_id" gorm:"index;not null"`
	MemberId   int64           `json:"member_id" gorm:"index;not null"`
	MemberName string          `json:"member_name" gorm:"size:64"`
	Shares     decimal.Decimal `json:"shares" gorm:"type:decimal(10,1)"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(38,16)"`
}

// TableName 自定义表名
func (DividendPayoutModel) TableName() string {
	return "dividend_payouts"
}
