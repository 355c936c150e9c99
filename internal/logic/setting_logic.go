package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blues/memberadmin/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingLogic 系统设置
type SettingLogic struct {
	db *gorm.DB
}

// NewSettingLogic 创建系统设置业务逻辑
func NewSettingLogic(db *gorm.DB) *SettingLogic {
	return &SettingLogic{db: db}
}

// List 全部设置, 自定义按钮单独管理不在此返回
func (s *SettingLogic) List(ctx context.Context) ([]model.SystemSettingModel, error) {
	var settings []model.SystemSettingModel
	if err := s.db.WithContext(ctx).
		Not(&model.SystemSettingModel{Key: model.SettingCustomButtons}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// Get 读取单个设置
func (s *SettingLogic) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty setting key: %w", ErrNotFound)
	}
	var setting model.SystemSettingModel
	if err := s.db.WithContext(ctx).Where(&model.SystemSettingModel{Key: key}).First(&setting).Error; err != nil {
		return "", notFound(err, "setting %q", key)
	}
	return setting.Value, nil
}

// Set 写入设置, 不存在时创建
func (s *SettingLogic) Set(ctx context.Context, key, value string) (*model.SystemSettingModel, error) {
	if key == "" {
		return nil, invalid("key", "is required")
	}
	if key == model.SettingCustomButtons {
		return nil, invalid("key", "is managed by the button config store")
	}
	if key == model.SettingTotalShares {
		if err := validateTotalShares(value); err != nil {
			return nil, err
		}
	}
	return s.put(ctx, key, value)
}

func (s *SettingLogic) put(ctx context.Context, key, value string) (*model.SystemSettingModel, error) {
	setting := model.SystemSettingModel{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, fmt.Errorf("save setting %q: %w", key, err)
	}
	return &setting, nil
}

// TotalShares 当前总股数, 未设置时使用 fallback
func (s *SettingLogic) TotalShares(ctx context.Context, fallback decimal.Decimal) (decimal.Decimal, error) {
	value, err := s.Get(ctx, model.SettingTotalShares)
	if errors.Is(err, ErrNotFound) || (err == nil && value == "") {
		return fallback, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	shares, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, invalid(model.SettingTotalShares, "is not a number: %q", value)
	}
	return shares, nil
}

// NotifyChannel 分红通知频道, 未设置时使用 fallback
func (s *SettingLogic) NotifyChannel(ctx context.Context, fallback string) string {
	value, err := s.Get(ctx, model.SettingNotifyChannelID)
	if err != nil || value == "" {
		return fallback
	}
	return value
}

func validateTotalShares(value string) error {
	shares, err := decimal.NewFromString(value)
	if err != nil {
		return invalid(model.SettingTotalShares, "is not a number: %q", value)
	}
	if !shares.IsPositive() {
		return invalid(model.SettingTotalShares, "must be greater than zero")
	}
	if !isHalfStep(shares) {
		return invalid(model.SettingTotalShares, "must be a multiple of 0.5")
	}
	return nil
}

var two = decimal.NewFromInt(2)

// isHalfStep 是否为 0.5 的整数倍
func isHalfStep(d decimal.Decimal) bool {
	doubled := d.Mul(two)
	return doubled.Equal(doubled.Truncate(0))
}
