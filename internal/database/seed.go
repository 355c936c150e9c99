package database

import (
	"fmt"

	"github.com/blues/memberadmin/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedOptions 默认数据
type SeedOptions struct {
	TotalShares     string
	NotifyChannelID string
	AdminUsername   string
	AdminPassword   string
}

// Migrations 全部迁移步骤, 版本号只增不改
func Migrations(opts SeedOptions) []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "create members and agents",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.MemberModel{}, &model.AgentModel{})
			},
		},
		{
			Version:     2,
			Description: "create transactions",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.TransactionModel{})
			},
		},
		{
			Version:     3,
			Description: "create ledgers and dividends",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&model.DailyLedgerModel{},
					&model.AccountBalanceModel{},
					&model.DividendModel{},
					&model.DividendPayoutModel{},
				)
			},
		},
		{
			Version:     4,
			Description: "create funds",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.FundCategoryModel{}, &model.FundModel{})
			},
		},
		{
			Version:     5,
			Description: "create points",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&model.PointTypeModel{},
					&model.MemberPointModel{},
					&model.PointTransactionModel{},
					&model.PointRedemptionRuleModel{},
				)
			},
		},
		{
			Version:     6,
			Description: "create system settings and admin users",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.SystemSettingModel{}, &model.AdminUserModel{})
			},
		},
		{
			Version:     7,
			Description: "seed fund categories",
			Up:          seedFundCategories,
		},
		{
			Version:     8,
			Description: "seed point types and redemption rules",
			Up:          seedPoints,
		},
		{
			Version:     9,
			Description: "seed system settings",
			Up: func(tx *gorm.DB) error {
				return seedSettings(tx, opts)
			},
		},
		{
			Version:     10,
			Description: "seed default admin",
			Up: func(tx *gorm.DB) error {
				return seedAdmin(tx, opts)
			},
		},
		{
			Version:     11,
			Description: "widen dividend per-share precision",
			Up:          widenDividendPrecision,
		},
	}
}

// widenDividendPrecision 每股金额和分红明细保留 16 位小数, sqlite 列没有精度无需修改
func widenDividendPrecision(tx *gorm.DB) error {
	if tx.Dialector.Name() == "sqlite" {
		return nil
	}
	m := tx.Migrator()
	for _, field := range []string{"ValuePerShare", "ValuePerHalfShare"} {
		if err := m.AlterColumn(&model.DividendModel{}, field); err != nil {
			return fmt.Errorf("alter dividends.%s: %w", field, err)
		}
	}
	if err := m.AlterColumn(&model.DividendPayoutModel{}, "Amount"); err != nil {
		return fmt.Errorf("alter dividend_payouts.amount: %w", err)
	}
	return nil
}

func insertIgnore(tx *gorm.DB, rows interface{}) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error
}

func seedFundCategories(tx *gorm.DB) error {
	categories := []model.FundCategoryModel{
		{Code: "gaming", Name: "游戏收入", Direction: model.FundDirectionIncome},
		{Code: "services", Name: "服务收入", Direction: model.FundDirectionIncome},
		{Code: "other", Name: "其他收入", Direction: model.FundDirectionIncome},
		{Code: "operations", Name: "运营支出", Direction: model.FundDirectionExpense},
		{Code: "staff", Name: "人员支出", Direction: model.FundDirectionExpense},
		{Code: "misc", Name: "杂项支出", Direction: model.FundDirectionExpense},
		{Code: "rent", Name: "房租", Direction: model.FundDirectionExpense},
		{Code: "system", Name: "系统费用", Direction: model.FundDirectionExpense},
	}
	return insertIgnore(tx, &categories)
}

func seedPoints(tx *gorm.DB) error {
	types := []model.PointTypeModel{
		{Code: "consume", Name: "消费积分", Ratio: decimal.NewFromInt(1), Enabled: true},
		{Code: "bonus", Name: "奖励积分", Ratio: decimal.Zero, Enabled: true},
	}
	if err := insertIgnore(tx, &types); err != nil {
		return err
	}

	var consume model.PointTypeModel
	if err := tx.Where("code = ?", "consume").First(&consume).Error; err != nil {
		return fmt.Errorf("load consume point type: %w", err)
	}

	rules := []model.PointRedemptionRuleModel{
		{PointTypeId: consume.Id, Name: "100积分抵10元", PointsRequired: 100, RewardValue: decimal.NewFromInt(10), Enabled: true},
		{PointTypeId: consume.Id, Name: "500积分抵60元", PointsRequired: 500, RewardValue: decimal.NewFromInt(60), Enabled: true},
	}
	return insertIgnore(tx, &rules)
}

func seedSettings(tx *gorm.DB, opts SeedOptions) error {
	shares := opts.TotalShares
	if shares == "" {
		shares = "10"
	}
	settings := []model.SystemSettingModel{
		{Key: model.SettingTotalShares, Value: shares, Description: "总股数"},
		{Key: model.SettingNotifyChannelID, Value: opts.NotifyChannelID, Description: "分红通知频道"},
		{Key: model.SettingShopName, Value: "", Description: "店铺名称"},
	}
	return insertIgnore(tx, &settings)
}

func seedAdmin(tx *gorm.DB, opts SeedOptions) error {
	if opts.AdminUsername == "" || opts.AdminPassword == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := model.AdminUserModel{Username: opts.AdminUsername, PasswordHash: string(hash), Role: "admin"}
	return insertIgnore(tx, &admin)
}
