package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/blues/memberadmin/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PointTypeConsume 消费赠送积分使用的积分类型
const PointTypeConsume = "consume"

// CreatePointTypeRequest 新增积分类型
type CreatePointTypeRequest struct {
	Code    string          `json:"code" validate:"required,max=32,alphanum"`
	Name    string          `json:"name" validate:"required,max=64"`
	Ratio   decimal.Decimal `json:"ratio"`
	Enabled bool            `json:"enabled"`
}

// AdjustPointsRequest 手工调整积分
type AdjustPointsRequest struct {
	MemberId    int64  `json:"memberId" validate:"required,gt=0"`
	PointTypeId int64  `json:"pointTypeId" validate:"required,gt=0"`
	Change      int64  `json:"change" validate:"required"`
	Reason      string `json:"reason" validate:"required,max=255"`
	Operator    string `json:"-"`
}

// CreateRedemptionRuleRequest 新增兑换规则
type CreateRedemptionRuleRequest struct {
	PointTypeId    int64           `json:"pointTypeId" validate:"required,gt=0"`
	Name           string          `json:"name" validate:"required,max=64"`
	PointsRequired int64           `json:"pointsRequired" validate:"required,gt=0"`
	RewardValue    decimal.Decimal `json:"rewardValue"`
	Enabled        bool            `json:"enabled"`
}

// RedeemRequest 按规则兑换
type RedeemRequest struct {
	MemberId int64  `json:"memberId" validate:"required,gt=0"`
	RuleId   int64  `json:"ruleId" validate:"required,gt=0"`
	Operator string `json:"-"`
}

// MemberPointBalance 会员某类积分余额
type MemberPointBalance struct {
	PointTypeId int64  `json:"pointTypeId"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Balance     int64  `json:"balance"`
}

// PointLogic 积分业务逻辑
type PointLogic struct {
	db *gorm.DB
}

// NewPointLogic 创建积分业务逻辑
func NewPointLogic(db *gorm.DB) *PointLogic {
	return &PointLogic{db: db}
}

// ListTypes 积分类型
func (p *PointLogic) ListTypes(ctx context.Context) ([]model.PointTypeModel, error) {
	var types []model.PointTypeModel
	if err := p.db.WithContext(ctx).Order("id").Find(&types).Error; err != nil {
		return nil, fmt.Errorf("list point types: %w", err)
	}
	return types, nil
}

// CreateType 新增积分类型
func (p *PointLogic) CreateType(ctx context.Context, req CreatePointTypeRequest) (*model.PointTypeModel, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Ratio.IsNegative() {
		return nil, invalid("ratio", "must not be negative")
	}
	pt := model.PointTypeModel{Code: req.Code, Name: req.Name, Ratio: req.Ratio, Enabled: req.Enabled}
	if err := p.db.WithContext(ctx).Create(&pt).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("point type %q: %w", req.Code, ErrConflict)
		}
		return nil, fmt.Errorf("create point type: %w", err)
	}
	return &pt, nil
}

// Balances 会员各类积分余额, 没有记录的类型余额为 0
func (p *PointLogic) Balances(ctx context.Context, memberID int64) ([]MemberPointBalance, error) {
	if err := ensureMember(p.db.WithContext(ctx), memberID); err != nil {
		return nil, err
	}

	var balances []MemberPointBalance
	err := p.db.WithContext(ctx).
		Table("point_types AS pt").
		Select("pt.id AS point_type_id, pt.code, pt.name, COALESCE(mp.balance, 0) AS balance").
		Joins("LEFT JOIN member_points mp ON mp.point_type_id = pt.id AND mp.member_id = ?", memberID).
		Order("pt.id").
		Scan(&balances).Error
	if err != nil {
		return nil, fmt.Errorf("load point balances: %w", err)
	}
	return balances, nil
}

// History 会员积分流水
func (p *PointLogic) History(ctx context.Context, memberID int64, page Page) ([]model.PointTransactionModel, int64, error) {
	query := p.db.WithContext(ctx).Model(&model.PointTransactionModel{}).Where("member_id = ?", memberID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count point transactions: %w", err)
	}
	var rows []model.PointTransactionModel
	if err := query.Scopes(page.scope).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list point transactions: %w", err)
	}
	return rows, total, nil
}

// Adjust 手工调整, 流水和余额在同一事务, 余额不能为负
func (p *PointLogic) Adjust(ctx context.Context, req AdjustPointsRequest) (*model.PointTransactionModel, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var record *model.PointTransactionModel
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureMember(tx, req.MemberId); err != nil {
			return err
		}
		var pt model.PointTypeModel
		if err := tx.First(&pt, req.PointTypeId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("pointTypeId", "point type %d does not exist", req.PointTypeId)
			}
			return fmt.Errorf("load point type: %w", err)
		}

		var err error
		record, err = applyPointChange(tx, pointChange{
			MemberId:    req.MemberId,
			PointTypeId: pt.Id,
			Change:      req.Change,
			Source:      model.PointSourceAdjust,
			Reason:      req.Reason,
			Operator:    req.Operator,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListRules 兑换规则
func (p *PointLogic) ListRules(ctx context.Context) ([]model.PointRedemptionRuleModel, error) {
	var rules []model.PointRedemptionRuleModel
	if err := p.db.WithContext(ctx).Order("points_required").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("list redemption rules: %w", err)
	}
	return rules, nil
}

// CreateRule 新增兑换规则
func (p *PointLogic) CreateRule(ctx context.Context, req CreateRedemptionRuleRequest) (*model.PointRedemptionRuleModel, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.RewardValue.IsNegative() {
		return nil, invalid("rewardValue", "must not be negative")
	}
	var count int64
	if err := p.db.WithContext(ctx).Model(&model.PointTypeModel{}).Where("id = ?", req.PointTypeId).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check point type: %w", err)
	}
	if count == 0 {
		return nil, invalid("pointTypeId", "point type %d does not exist", req.PointTypeId)
	}

	rule := model.PointRedemptionRuleModel{
		PointTypeId:    req.PointTypeId,
		Name:           req.Name,
		PointsRequired: req.PointsRequired,
		RewardValue:    req.RewardValue,
		Enabled:        req.Enabled,
	}
	if err := p.db.WithContext(ctx).Create(&rule).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("redemption rule %q: %w", req.Name, ErrConflict)
		}
		return nil, fmt.Errorf("create redemption rule: %w", err)
	}
	return &rule, nil
}

// Redeem 按规则扣减积分, 记录兑换价值
func (p *PointLogic) Redeem(ctx context.Context, req RedeemRequest) (*model.PointTransactionModel, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var record *model.PointTransactionModel
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureMember(tx, req.MemberId); err != nil {
			return err
		}
		var rule model.PointRedemptionRuleModel
		if err := tx.First(&rule, req.RuleId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("ruleId", "redemption rule %d does not exist", req.RuleId)
			}
			return fmt.Errorf("load redemption rule: %w", err)
		}
		if !rule.Enabled {
			return invalid("ruleId", "redemption rule %q is disabled", rule.Name)
		}

		var err error
		record, err = applyPointChange(tx, pointChange{
			MemberId:    req.MemberId,
			PointTypeId: rule.PointTypeId,
			Change:      -rule.PointsRequired,
			Source:      model.PointSourceRedeem,
			RefId:       rule.Id,
			Reason:      rule.Name,
			Operator:    req.Operator,
			RewardValue: rule.RewardValue,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

type pointChange struct {
	MemberId    int64
	PointTypeId int64
	Change      int64
	Source      model.PointSource
	RefId       int64
	Reason      string
	Operator    string
	RewardValue decimal.Decimal
}

// applyPointChange 必须在事务中调用
func applyPointChange(tx *gorm.DB, c pointChange) (*model.PointTransactionModel, error) {
	var balance model.MemberPointModel
	err := forUpdate(tx).
		Where("member_id = ? AND point_type_id = ?", c.MemberId, c.PointTypeId).
		First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		balance = model.MemberPointModel{MemberId: c.MemberId, PointTypeId: c.PointTypeId}
		if err := tx.Create(&balance).Error; err != nil {
			return nil, fmt.Errorf("create point balance: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("load point balance: %w", err)
	}

	next := balance.Balance + c.Change
	if next < 0 {
		return nil, invalid("change", "insufficient points: balance %d, change %d", balance.Balance, c.Change)
	}
	if err := tx.Model(&balance).Update("balance", next).Error; err != nil {
		return nil, fmt.Errorf("update point balance: %w", err)
	}

	record := model.PointTransactionModel{
		MemberId:     c.MemberId,
		PointTypeId:  c.PointTypeId,
		Change:       c.Change,
		BalanceAfter: next,
		Source:       c.Source,
		RefId:        c.RefId,
		Reason:       c.Reason,
		Operator:     c.Operator,
		RewardValue:  c.RewardValue,
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create point transaction: %w", err)
	}
	return &record, nil
}

func ensureMember(db *gorm.DB, memberID int64) error {
	var count int64
	if err := db.Model(&model.MemberModel{}).Where("id = ?", memberID).Count(&count).Error; err != nil {
		return fmt.Errorf("check member: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("member %d: %w", memberID, ErrNotFound)
	}
	return nil
}
