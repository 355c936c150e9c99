package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionModel 会员交易流水
type TransactionModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	MemberId     int64             `json:"member_id" gorm:"index;not null"`
	Type         TransactionType   `json:"type" gorm:"size:16;not null"`
	Amount       decimal.Decimal   `json:"amount" gorm:"type:decimal(18,2);not null"`
	BalanceAfter decimal.Decimal   `json:"balance_after" gorm:"type:decimal(18,2)"`
	Points       int64             `json:"points" gorm:"default:0"` // 本笔交易获得的积分
	Status       TransactionStatus `json:"status" gorm:"size:16;default:'normal'"`
	Operator     string            `json:"operator" gorm:"size:64"`
	Remark       string            `json:"remark" gorm:"size:255"`
}

// TransactionType 交易类型
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "deposit"  // 存入
	TransactionTypeWithdraw TransactionType = "withdraw" // 取出
	TransactionTypeConsume  TransactionType = "consume"  // 消费
	TransactionTypeAdjust   TransactionType = "adjust"   // 人工补差, 增加余额
)

// TransactionStatus 交易状态
type TransactionStatus string

const (
	TransactionStatusNormal TransactionStatus = "normal" // 正常
	TransactionStatusVoid   TransactionStatus = "void"   // 已作废
)

// TableName 自定义表名
func (TransactionModel) TableName() string {
	return "transactions"
}
