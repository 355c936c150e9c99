package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blues/memberadmin/internal/cache"
	"github.com/blues/memberadmin/internal/logger"
	"github.com/blues/memberadmin/internal/model"
	"github.com/blues/memberadmin/internal/settlement"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// periodCacheKey 当前期号的缓存键
const periodCacheKey = "period:current"

// CreateLedgerRequest 录入日账, 支出为负数; 不传期号时使用当前期号
type CreateLedgerRequest struct {
	Date         string             `json:"date" validate:"required,datetime=2006-01-02"`
	PeriodNumber *int               `json:"periodNumber"`
	Revenue      settlement.Revenue `json:"revenue"`
	Expense      settlement.Expense `json:"expense"`
	Operator     string             `json:"-"`
	Remark       string             `json:"remark" validate:"max=255"`
}

// BalanceInput 单个账户的期初期末
type BalanceInput struct {
	Account string          `json:"account" validate:"required"`
	Opening decimal.Decimal `json:"opening"`
	Closing decimal.Decimal `json:"closing"`
}

// RecordBalancesRequest 录入某日账户余额
type RecordBalancesRequest struct {
	Date     string         `json:"date" validate:"required,datetime=2006-01-02"`
	Balances []BalanceInput `json:"balances" validate:"required,min=1,dive"`
}

// LedgerFilter 日账查询条件, Cycle 大于 0 时只返回该周期
type LedgerFilter struct {
	Cycle int
	Page
}

// LedgerLogic 日账和账户余额
type LedgerLogic struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewLedgerLogic c 可以为 nil
func NewLedgerLogic(db *gorm.DB, c *cache.Cache) *LedgerLogic {
	return &LedgerLogic{db: db, cache: c}
}

// CurrentPeriod 最新日账期号加一, 没有日账时为 1
func (l *LedgerLogic) CurrentPeriod(ctx context.Context) (int, error) {
	var latest int
	if err := l.db.WithContext(ctx).Model(&model.DailyLedgerModel{}).
		Select("COALESCE(MAX(period_number), 0)").
		Scan(&latest).Error; err != nil {
		return 0, fmt.Errorf("load latest period: %w", err)
	}
	return latest + 1, nil
}

type amountField struct {
	name  string
	value decimal.Decimal
}

func validateLedgerAmounts(req CreateLedgerRequest) error {
	revenue := []amountField{
		{"revenue.gaming", req.Revenue.Gaming},
		{"revenue.services", req.Revenue.Services},
		{"revenue.other", req.Revenue.Other},
	}
	for _, f := range revenue {
		if f.value.IsNegative() {
			return invalid(f.name, "must not be negative")
		}
	}
	expense := []amountField{
		{"expense.operations", req.Expense.Operations},
		{"expense.staff", req.Expense.Staff},
		{"expense.misc", req.Expense.Misc},
		{"expense.rent", req.Expense.Rent},
		{"expense.system", req.Expense.System},
	}
	for _, f := range expense {
		if f.value.IsPositive() {
			return invalid(f.name, "must be zero or negative")
		}
	}
	return nil
}

// Create 录入日账. 每期、每个营业日各一条, 期号不能跳号, 已结算周期不能再录入.
func (l *LedgerLogic) Create(ctx context.Context, req CreateLedgerRequest) (*model.DailyLedgerModel, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := validateLedgerAmounts(req); err != nil {
		return nil, err
	}
	date, err := time.Parse(DateLayout, req.Date)
	if err != nil {
		return nil, invalid("date", "must be YYYY-MM-DD")
	}

	var ledger model.DailyLedgerModel
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := NewLedgerLogic(tx, nil).CurrentPeriod(ctx)
		if err != nil {
			return err
		}
		period := current
		if req.PeriodNumber != nil {
			period = *req.PeriodNumber
		}
		if err := settlement.ValidatePeriod(period); err != nil {
			return invalid("periodNumber", "must be at least 1")
		}
		if period > current {
			return invalid("periodNumber", "period %d skips ahead of current period %d", period, current)
		}

		var count int64
		if err := tx.Model(&model.DailyLedgerModel{}).
			Where("period_number = ? OR business_date = ?", period, date).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check existing ledger: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("ledger for period %d or date %s: %w", period, req.Date, ErrConflict)
		}

		cycle := settlement.CycleNumber(period)
		if err := tx.Model(&model.DividendModel{}).Where("cycle_number = ?", cycle).Count(&count).Error; err != nil {
			return fmt.Errorf("check settled cycle: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("cycle %d already settled: %w", cycle, ErrConflict)
		}

		ledger = model.NewDailyLedgerModel(settlement.DailyLedgerEntry{
			Date:         date,
			PeriodNumber: period,
			Revenue:      req.Revenue,
			Expense:      req.Expense,
		})
		ledger.Operator = req.Operator
		ledger.Remark = req.Remark
		if err := tx.Create(&ledger).Error; err != nil {
			if isDuplicate(err) {
				return fmt.Errorf("ledger for period %d: %w", period, ErrConflict)
			}
			return fmt.Errorf("create ledger: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.invalidatePeriod(ctx)
	logger.Info("Recorded ledger for period %d (%s), net %s", ledger.PeriodNumber, req.Date, ledger.NetProfit.StringFixed(2))
	return &ledger, nil
}

func (l *LedgerLogic) invalidatePeriod(ctx context.Context) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Delete(ctx, periodCacheKey); err != nil {
		logger.Warn("Could not invalidate cached period: %v", err)
	}
}

// Get 按期号读取日账
func (l *LedgerLogic) Get(ctx context.Context, period int) (*model.DailyLedgerModel, error) {
	var ledger model.DailyLedgerModel
	if err := l.db.WithContext(ctx).Where("period_number = ?", period).First(&ledger).Error; err != nil {
		return nil, notFound(err, "ledger for period %d", period)
	}
	return &ledger, nil
}

// List 日账列表, 按期号倒序
func (l *LedgerLogic) List(ctx context.Context, filter LedgerFilter) ([]model.DailyLedgerModel, int64, error) {
	query := l.db.WithContext(ctx).Model(&model.DailyLedgerModel{})
	if filter.Cycle > 0 {
		periods := settlement.CyclePeriods(filter.Cycle)
		query = query.Where("period_number IN ?", periods[:])
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count ledgers: %w", err)
	}
	var ledgers []model.DailyLedgerModel
	if err := query.Scopes(filter.Page.scope).Order("period_number DESC").Find(&ledgers).Error; err != nil {
		return nil, 0, fmt.Errorf("list ledgers: %w", err)
	}
	return ledgers, total, nil
}

// Cycle 读取周期内已录入的日账, 周期没有任何日账时返回 settlement.ErrEmptyCycle
func (l *LedgerLogic) Cycle(ctx context.Context, cycle int) (settlement.DividendCycle, error) {
	if cycle < 1 {
		return settlement.DividendCycle{}, invalid("cycle", "must be at least 1")
	}
	periods := settlement.CyclePeriods(cycle)

	var ledgers []model.DailyLedgerModel
	if err := l.db.WithContext(ctx).
		Where("period_number IN ?", periods[:]).
		Order("period_number").
		Find(&ledgers).Error; err != nil {
		return settlement.DividendCycle{}, fmt.Errorf("load cycle %d ledgers: %w", cycle, err)
	}

	entries := make([]settlement.DailyLedgerEntry, 0, len(ledgers))
	for _, m := range ledgers {
		entries = append(entries, m.ToEntry())
	}
	dc, err := settlement.BuildCycle(entries)
	if errors.Is(err, settlement.ErrEmptyCycle) {
		return settlement.DividendCycle{CycleNumber: cycle}, fmt.Errorf("cycle %d: %w", cycle, err)
	}
	return dc, err
}

// RecordBalances 按日期和账户写入余额, 已存在时覆盖
func (l *LedgerLogic) RecordBalances(ctx context.Context, req RecordBalancesRequest) ([]settlement.AccountBalanceSnapshot, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	date, err := time.Parse(DateLayout, req.Date)
	if err != nil {
		return nil, invalid("date", "must be YYYY-MM-DD")
	}

	rows := make([]model.AccountBalanceModel, 0, len(req.Balances))
	seen := make(map[string]struct{}, len(req.Balances))
	for _, b := range req.Balances {
		if !settlement.IsAccount(b.Account) {
			return nil, invalid("account", "unknown account %q", b.Account)
		}
		if _, ok := seen[b.Account]; ok {
			return nil, invalid("account", "duplicate account %q", b.Account)
		}
		seen[b.Account] = struct{}{}
		rows = append(rows, model.AccountBalanceModel{
			BusinessDate: date,
			AccountName:  b.Account,
			Opening:      b.Opening,
			Closing:      b.Closing,
		})
	}

	err = l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "business_date"}, {Name: "account_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"opening", "closing", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("save account balances: %w", err)
	}

	return l.Balances(ctx, req.Date)
}

// Balances 某日各账户余额, DailyDelta 相对上一个有记录的营业日
func (l *LedgerLogic) Balances(ctx context.Context, day string) ([]settlement.AccountBalanceSnapshot, error) {
	date, err := time.Parse(DateLayout, day)
	if err != nil {
		return nil, invalid("date", "must be YYYY-MM-DD")
	}

	var rows []model.AccountBalanceModel
	if err := l.db.WithContext(ctx).Where("business_date = ?", date).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load account balances: %w", err)
	}
	byAccount := make(map[string]model.AccountBalanceModel, len(rows))
	for _, r := range rows {
		byAccount[r.AccountName] = r
	}

	snapshots := make([]settlement.AccountBalanceSnapshot, 0, len(rows))
	for _, account := range settlement.Accounts {
		row, ok := byAccount[account]
		if !ok {
			continue
		}

		previous := decimal.Zero
		var prev model.AccountBalanceModel
		err := l.db.WithContext(ctx).
			Where("account_name = ? AND business_date < ?", account, date).
			Order("business_date DESC").
			First(&prev).Error
		switch {
		case err == nil:
			previous = prev.Closing
		case errors.Is(err, gorm.ErrRecordNotFound):
			previous = row.Opening
		default:
			return nil, fmt.Errorf("load previous %s balance: %w", account, err)
		}

		snap, err := settlement.NewAccountBalanceSnapshot(account, row.Opening, row.Closing, previous)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}
