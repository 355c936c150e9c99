package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundCategoryModel 资金分类
type FundCategoryModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Code      string        `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name      string        `json:"name" gorm:"size:64;not null"`
	Direction FundDirection `json:"direction" gorm:"size:16;not null"`
}

// FundDirection 资金方向
type FundDirection string

const (
	FundDirectionIncome  FundDirection = "income"  // 收入
	FundDirectionExpense FundDirection = "expense" // 支出
)

// TableName 自定义表名
func (FundCategoryModel) TableName() string {
	return "fund_categories"
}

// FundModel 资金记录
type FundModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CategoryId   int64           `json:"category_id" gorm:"index;not null"`
	BusinessDate time.Time       `json:"business_date" gorm:"type:date;index"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	Operator     string          `json:"operator" gorm:"size:64"`
	Remark       string          `json:"remark" gorm:"size:255"`
}

// TableName 自定义表名
func (FundModel) TableName() string {
	return "funds"
}
