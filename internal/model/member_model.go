package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MemberModel 会员
type MemberModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	MemberNo string `json:"member_no" gorm:"size:32;uniqueIndex;not null"`
	Name     string `json:"name" gorm:"size:64;not null"`
	Phone    string `json:"phone" gorm:"size:32"`

	// 持股, 允许半股
	Shares  decimal.Decimal `json:"shares" gorm:"type:decimal(10,1);not null;default:0"`
	Balance decimal.Decimal `json:"balance" gorm:"type:decimal(18,2);not null;default:0"`

	AgentId *int64       `json:"agent_id" gorm:"index"`
	Status  MemberStatus `json:"status" gorm:"size:16;default:'active'"`
	Remark  string       `json:"remark" gorm:"size:255"`
}

// MemberStatus 会员状态
type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"   // 正常
	MemberStatusInactive MemberStatus = "inactive" // 停用
)

// TableName 自定义表名
func (MemberModel) TableName() string {
	return "members"
}

// AgentModel 代理
type AgentModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name           string          `json:"name" gorm:"size:64;not null"`
	Phone          string          `json:"phone" gorm:"size:32"`
	CommissionRate decimal.Decimal `json:"commission_rate" gorm:"type:decimal(5,4);default:0"`
	Status         MemberStatus    `json:"status" gorm:"size:16;default:'active'"`
}

// TableName 自定义表名
func (AgentModel) TableName() string {
	return "agents"
}
