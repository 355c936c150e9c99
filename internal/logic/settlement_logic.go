package logic

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/blues/memberadmin/internal/cache"
	"github.com/blues/memberadmin/internal/logger"
	"github.com/blues/memberadmin/internal/model"
	"github.com/blues/memberadmin/internal/notify"
	"github.com/blues/memberadmin/internal/settlement"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/blues/memberadmin/internal/logic")

// NotificationDispatcher 异步发送分红通知, 由 notify.Dispatcher 实现
type NotificationDispatcher interface {
	Dispatch(channelID string, netProfit, valuePerShare decimal.Decimal, done func(notify.Outcome)) error
}

// SettlementOptions 结算依赖, Cache 和 Dispatcher 可以为 nil
type SettlementOptions struct {
	DefaultShares  decimal.Decimal
	DefaultChannel string
	PeriodTTL      time.Duration
	Cache          *cache.Cache
	Dispatcher     NotificationDispatcher
}

// CalculateRequest 临时计算, 不落库; 不传总股数时使用系统设置
type CalculateRequest struct {
	DailyProfits [settlement.DaysPerCycle]decimal.Decimal `json:"dailyProfits"`
	TotalShares  *decimal.Decimal                         `json:"totalShares"`
}

// SettleRequest 结算一个完整周期
type SettleRequest struct {
	CycleNumber int    `json:"cycleNumber" validate:"required,gt=0"`
	SettledBy   string `json:"-"`
}

// CyclePreview 周期当前状态, 完整时包含计算结果和会员明细
type CyclePreview struct {
	CycleNumber int                          `json:"cycleNumber"`
	Periods     [settlement.DaysPerCycle]int `json:"periods"`
	Recorded    []int                        `json:"recordedPeriods"`
	Days        []decimal.Decimal            `json:"days"`
	Progress    string                       `json:"progress"`
	Complete    bool                         `json:"complete"`
	Settled     bool                         `json:"settled"`
	DividendId  *int64                       `json:"dividendId,omitempty"`
	TotalProfit decimal.Decimal              `json:"totalProfit"`
	Result      *settlement.CycleResult      `json:"result,omitempty"`
	Payouts     []settlement.MemberPayout    `json:"payouts,omitempty"`
}

// SettlementLogic 分红结算
type SettlementLogic struct {
	db         *gorm.DB
	ledgers    *LedgerLogic
	members    *MemberLogic
	settings   *SettingLogic
	cache      *cache.Cache
	dispatcher NotificationDispatcher
	opts       SettlementOptions
}

// NewSettlementLogic 创建结算业务逻辑
func NewSettlementLogic(db *gorm.DB, opts SettlementOptions) *SettlementLogic {
	if opts.PeriodTTL <= 0 {
		opts.PeriodTTL = 30 * time.Second
	}
	return &SettlementLogic{
		db:         db,
		ledgers:    NewLedgerLogic(db, opts.Cache),
		members:    NewMemberLogic(db, ""),
		settings:   NewSettingLogic(db),
		cache:      opts.Cache,
		dispatcher: opts.Dispatcher,
		opts:       opts,
	}
}

// LatestPeriod 当前期号, 配置了 redis 时短暂缓存
func (s *SettlementLogic) LatestPeriod(ctx context.Context) (int, error) {
	if s.cache != nil {
		n, ok, err := s.cache.GetInt(ctx, periodCacheKey)
		if err != nil {
			logger.Warn("Period cache read failed: %v", err)
		} else if ok {
			return n, nil
		}
	}

	n, err := s.ledgers.CurrentPeriod(ctx)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetInt(ctx, periodCacheKey, n, s.opts.PeriodTTL); err != nil {
			logger.Warn("Period cache write failed: %v", err)
		}
	}
	return n, nil
}

func (s *SettlementLogic) totalShares(ctx context.Context) (decimal.Decimal, error) {
	return s.settings.TotalShares(ctx, s.opts.DefaultShares)
}

// Calculate 按给定三日利润计算, 不读取日账也不落库
func (s *SettlementLogic) Calculate(ctx context.Context, req CalculateRequest) (settlement.CycleResult, error) {
	shares := decimal.Zero
	if req.TotalShares != nil {
		shares = *req.TotalShares
	} else {
		var err error
		if shares, err = s.totalShares(ctx); err != nil {
			return settlement.CycleResult{}, err
		}
	}
	return settlement.CalculateCycle(req.DailyProfits, shares)
}

// Preview 周期状态 ("day N of 3"), cycle 小于 1 时取最近录入日账所在周期
func (s *SettlementLogic) Preview(ctx context.Context, cycle int) (*CyclePreview, error) {
	ctx, span := tracer.Start(ctx, "settlement.Preview")
	defer span.End()

	if cycle < 1 {
		current, err := s.ledgers.CurrentPeriod(ctx)
		if err != nil {
			return nil, err
		}
		cycle = settlement.CycleNumber(current - 1)
	}
	span.SetAttributes(attribute.Int("cycle", cycle))

	preview := &CyclePreview{
		CycleNumber: cycle,
		Periods:     settlement.CyclePeriods(cycle),
		TotalProfit: decimal.Zero,
	}

	dc, err := s.ledgers.Cycle(ctx, cycle)
	switch {
	case errors.Is(err, settlement.ErrEmptyCycle):
		preview.Progress = dc.Progress()
	case err != nil:
		span.RecordError(err)
		return nil, err
	default:
		preview.Recorded = dc.Periods
		preview.Days = dc.Days
		preview.Progress = dc.Progress()
		preview.Complete = dc.Complete()
		preview.TotalProfit = dc.TotalProfit
	}

	var dividend model.DividendModel
	err = s.db.WithContext(ctx).Where("cycle_number = ?", cycle).First(&dividend).Error
	switch {
	case err == nil:
		preview.Settled = true
		preview.DividendId = &dividend.Id
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load dividend for cycle %d: %w", cycle, err)
	}

	if !preview.Complete {
		return preview, nil
	}

	shares, err := s.totalShares(ctx)
	if err != nil {
		return nil, err
	}
	result, err := dc.Calculate(shares)
	if err != nil {
		return nil, err
	}
	holdings, err := s.members.Holdings(ctx)
	if err != nil {
		return nil, err
	}
	preview.Result = &result
	preview.Payouts = settlement.Payouts(result.ShareAllocation, holdings)
	return preview, nil
}

// Settle 按已录入的日账结算完整周期并保存会员明细.
// 通知异步发送, 发送结果只更新通知状态, 不影响结算结果.
func (s *SettlementLogic) Settle(ctx context.Context, req SettleRequest) (*model.DividendModel, error) {
	ctx, span := tracer.Start(ctx, "settlement.Settle",
		trace.WithAttributes(attribute.Int("cycle", req.CycleNumber)))
	defer span.End()

	dividend, err := s.settle(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("total_profit", dividend.TotalProfit.String()))

	s.notify(ctx, dividend)
	return dividend, nil
}

func (s *SettlementLogic) settle(ctx context.Context, req SettleRequest) (*model.DividendModel, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&model.DividendModel{}).
		Where("cycle_number = ?", req.CycleNumber).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check settled cycle: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("cycle %d already settled: %w", req.CycleNumber, ErrConflict)
	}

	dc, err := s.ledgers.Cycle(ctx, req.CycleNumber)
	if err != nil {
		return nil, err
	}
	shares, err := s.totalShares(ctx)
	if err != nil {
		return nil, err
	}
	result, err := dc.Calculate(shares)
	if err != nil {
		return nil, err
	}
	holdings, err := s.members.Holdings(ctx)
	if err != nil {
		return nil, err
	}

	dividend := model.DividendModel{
		CycleNumber:       dc.CycleNumber,
		StartDate:         dc.StartDate,
		Day1Profit:        dc.Days[0],
		Day2Profit:        dc.Days[1],
		Day3Profit:        dc.Days[2],
		TotalProfit:       result.TotalProfit,
		TotalShares:       result.TotalShares,
		ValuePerShare:     result.ValuePerShare,
		ValuePerHalfShare: result.ValuePerHalfShare,
		SettledBy:         req.SettledBy,
		SettledAt:         time.Now(),
		ChannelId:         s.settings.NotifyChannel(ctx, s.opts.DefaultChannel),
		NotifyStatus:      model.NotifyStatusPending,
	}
	for _, p := range settlement.Payouts(result.ShareAllocation, holdings) {
		dividend.Payouts = append(dividend.Payouts, model.DividendPayoutModel{
			MemberId:   p.MemberID,
			MemberName: p.Name,
			Shares:     p.Shares,
			Amount:     p.Amount,
		})
	}
	if dividend.ChannelId == "" || s.dispatcher == nil {
		dividend.NotifyStatus = model.NotifyStatusSkipped
	}

	if err := s.db.WithContext(ctx).Create(&dividend).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("cycle %d already settled: %w", req.CycleNumber, ErrConflict)
		}
		return nil, fmt.Errorf("save dividend: %w", err)
	}

	logger.Info("Settled cycle %d: total %s, per share %s, %d payouts",
		dividend.CycleNumber, dividend.TotalProfit.StringFixed(2), dividend.ValuePerShare.StringFixed(2), len(dividend.Payouts))
	return &dividend, nil
}

func (s *SettlementLogic) notify(ctx context.Context, dividend *model.DividendModel) {
	if dividend.NotifyStatus == model.NotifyStatusSkipped {
		return
	}

	id := dividend.Id
	err := s.dispatcher.Dispatch(dividend.ChannelId, dividend.TotalProfit, dividend.ValuePerShare, func(o notify.Outcome) {
		s.recordNotification(id, o)
	})
	if err != nil {
		logger.Warn("Could not queue notification for dividend %d: %v", id, err)
		s.recordNotification(id, notify.Outcome{Err: err})
	}
}

func (s *SettlementLogic) recordNotification(id int64, o notify.Outcome) {
	now := time.Now()
	updates := map[string]interface{}{
		"notify_status": model.NotifyStatusSent,
		"notify_error":  "",
		"notified_at":   now,
	}
	if !o.Sent || o.Err != nil {
		updates["notify_status"] = model.NotifyStatusFailed
		if o.Err != nil {
			updates["notify_error"] = truncate(o.Err.Error(), 255)
		}
	}
	if err := s.db.Model(&model.DividendModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		logger.Error("Could not record notification status for dividend %d: %v", id, err)
	}
}

// truncate 最多保留 n 个字符, 不截断多字节字符
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// DueCycles 日账完整但还未结算的周期
func (s *SettlementLogic) DueCycles(ctx context.Context) ([]int, error) {
	var periods []int
	if err := s.db.WithContext(ctx).Model(&model.DailyLedgerModel{}).
		Order("period_number").
		Pluck("period_number", &periods).Error; err != nil {
		return nil, fmt.Errorf("load ledger periods: %w", err)
	}
	var settled []int
	if err := s.db.WithContext(ctx).Model(&model.DividendModel{}).
		Pluck("cycle_number", &settled).Error; err != nil {
		return nil, fmt.Errorf("load settled cycles: %w", err)
	}

	done := make(map[int]bool, len(settled))
	for _, c := range settled {
		done[c] = true
	}
	days := make(map[int]int)
	var order []int
	for _, p := range periods {
		c := settlement.CycleNumber(p)
		if days[c] == 0 {
			order = append(order, c)
		}
		days[c]++
	}

	var due []int
	for _, c := range order {
		if days[c] == settlement.DaysPerCycle && !done[c] {
			due = append(due, c)
		}
	}
	return due, nil
}

// SettleDue 结算全部到期周期, 已被其他实例结算的周期跳过
func (s *SettlementLogic) SettleDue(ctx context.Context, settledBy string) ([]model.DividendModel, error) {
	due, err := s.DueCycles(ctx)
	if err != nil {
		return nil, err
	}

	var (
		settled []model.DividendModel
		errs    []error
	)
	for _, cycle := range due {
		d, err := s.Settle(ctx, SettleRequest{CycleNumber: cycle, SettledBy: settledBy})
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("cycle %d: %w", cycle, err))
			continue
		}
		settled = append(settled, *d)
	}
	return settled, errors.Join(errs...)
}

// List 结算记录, 按周期倒序
func (s *SettlementLogic) List(ctx context.Context, page Page) ([]model.DividendModel, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.DividendModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count dividends: %w", err)
	}
	var dividends []model.DividendModel
	if err := s.db.WithContext(ctx).Scopes(page.scope).Order("cycle_number DESC").Find(&dividends).Error; err != nil {
		return nil, 0, fmt.Errorf("list dividends: %w", err)
	}
	return dividends, total, nil
}

// Get 结算详情, 包含会员明细
func (s *SettlementLogic) Get(ctx context.Context, id int64) (*model.DividendModel, error) {
	var dividend model.DividendModel
	if err := s.db.WithContext(ctx).
		Preload("Payouts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&dividend, id).Error; err != nil {
		return nil, notFound(err, "dividend %d", id)
	}
	return &dividend, nil
}
