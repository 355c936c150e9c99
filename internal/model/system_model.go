package model

import (
	"time"
)

// SystemSettingModel 系统设置, 键值对
type SystemSettingModel struct {
	Key         string    `json:"key" gorm:"primaryKey;size:64"`
	Value       string    `json:"value" gorm:"type:text"`
	Description string    `json:"description" gorm:"size:255"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 自定义表名
func (SystemSettingModel) TableName() string {
	return "system_settings"
}

const (
	SettingTotalShares     = "total_shares"      // 总股数
	SettingNotifyChannelID = "notify_channel_id" // 分红通知频道
	SettingCustomButtons   = "custom_buttons"    // 自定义按钮配置 (JSON)
	SettingShopName        = "shop_name"
)

// AdminUserModel 后台管理员
type AdminUserModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username     string     `json:"username" gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"size:128;not null"`
	Role         string     `json:"role" gorm:"size:16;default:'admin'"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// TableName 自定义表名
func (AdminUserModel) TableName() string {
	return "admin_users"
}

// SchemaMigrationModel 迁移执行记录
type SchemaMigrationModel struct {
	Version     int       `json:"version" gorm:"primaryKey;autoIncrement:false"`
	Description string    `json:"description" gorm:"size:255"`
	Status      string    `json:"status" gorm:"size:16;not null"` // success, failed
	Error       string    `json:"error" gorm:"type:text"`
	AppliedAt   time.Time `json:"applied_at"`
}

const (
	MigrationStatusSuccess = "success"
	MigrationStatusFailed  = "failed"
)

// TableName 自定义表名
func (SchemaMigrationModel) TableName() string {
	return "schema_migrations"
}
