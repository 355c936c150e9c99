package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PointTypeModel 积分类型
type PointTypeModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Code    string          `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name    string          `json:"name" gorm:"size:64;not null"`
	Ratio   decimal.Decimal `json:"ratio" gorm:"type:decimal(10,4);default:0"` // 每单位消费金额获得的积分
	Enabled bool            `json:"enabled"`
}

// TableName 自定义表名
func (PointTypeModel) TableName() string {
	return "point_types"
}

// MemberPointModel 会员积分余额
type MemberPointModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	UpdatedAt time.Time `json:"updated_at"`

	MemberId    int64 `json:"member_id" gorm:"uniqueIndex:idx_member_point_type;not null"`
	PointTypeId int64 `json:"point_type_id" gorm:"uniqueIndex:idx_member_point_type;not null"`
	Balance     int64 `json:"balance" gorm:"not null;default:0"`
}

// TableName 自定义表名
func (MemberPointModel) TableName() string {
	return "member_points"
}

// PointTransactionModel 积分流水
type PointTransactionModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	MemberId     int64           `json:"member_id" gorm:"index;not null"`
	PointTypeId  int64           `json:"point_type_id" gorm:"not null"`
	Change       int64           `json:"change" gorm:"not null"`
	BalanceAfter int64           `json:"balance_after" gorm:"not null"`
	Source       PointSource     `json:"source" gorm:"size:16;not null"`
	RefId        int64           `json:"ref_id"`
	Reason       string          `json:"reason" gorm:"size:255"`
	Operator     string          `json:"operator" gorm:"size:64"`
	RewardValue  decimal.Decimal `json:"reward_value" gorm:"type:decimal(18,2);default:0"`
}

// PointSource 积分变动来源
type PointSource string

const (
	PointSourceAdjust      PointSource = "adjust"      // 手工调整
	PointSourceTransaction PointSource = "transaction" // 消费赠送
	PointSourceRedeem      PointSource = "redeem"      // 兑换
)

// TableName 自定义表名
func (PointTransactionModel) TableName() string {
	return "point_transactions"
}

// PointRedemptionRuleModel 积分兑换规则
type PointRedemptionRuleModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PointTypeId    int64           `json:"point_type_id" gorm:"index;not null"`
	Name           string          `json:"name" gorm:"size:64;uniqueIndex;not null"`
	PointsRequired int64           `json:"points_required" gorm:"not null"`
	RewardValue    decimal.Decimal `json:"reward_value" gorm:"type:decimal(18,2);default:0"`
	Enabled        bool            `json:"enabled"`
}

// TableName 自定义表名
func (PointRedemptionRuleModel) TableName() string {
	return "point_redemption_rules"
}
