package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blues/memberadmin/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateTransactionRequest 新增交易
type CreateTransactionRequest struct {
	MemberId int64                 `json:"memberId"`
	Type     model.TransactionType `json:"type" validate:"required,oneof=deposit withdraw consume adjust"`
	Amount   decimal.Decimal       `json:"amount"`
	Operator string                `json:"-"`
	Remark   string                `json:"remark" validate:"max=255"`
}

// TransactionFilter 交易查询条件
type TransactionFilter struct {
	MemberId int64
	Type     string
	Status   string
	From, To string
	Page
}

// TransactionLogic 会员交易业务逻辑
type TransactionLogic struct {
	db *gorm.DB
}

// NewTransactionLogic 创建交易业务逻辑
func NewTransactionLogic(db *gorm.DB) *TransactionLogic {
	return &TransactionLogic{db: db}
}

// balanceDelta 交易对会员余额的影响
func balanceDelta(t model.TransactionType, amount decimal.Decimal) decimal.Decimal {
	switch t {
	case model.TransactionTypeWithdraw, model.TransactionTypeConsume:
		return amount.Neg()
	default:
		return amount
	}
}

// Create 会员和正数金额必填, 校验失败时不写入任何数据.
// 余额变动和消费积分与交易记录在同一事务.
func (l *TransactionLogic) Create(ctx context.Context, req CreateTransactionRequest) (*model.TransactionModel, error) {
	if req.MemberId <= 0 {
		return nil, invalid("memberId", "is required")
	}
	if !req.Amount.IsPositive() {
		return nil, invalid("amount", "must be greater than zero")
	}
	if req.Type == "" {
		req.Type = model.TransactionTypeDeposit
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var record model.TransactionModel
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member model.MemberModel
		if err := forUpdate(tx).First(&member, req.MemberId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("memberId", "member %d does not exist", req.MemberId)
			}
			return fmt.Errorf("load member: %w", err)
		}
		if member.Status != model.MemberStatusActive {
			return invalid("memberId", "member %s is %s", member.MemberNo, member.Status)
		}

		balance := member.Balance.Add(balanceDelta(req.Type, req.Amount))
		if balance.IsNegative() {
			return invalid("amount", "insufficient balance %s", member.Balance.StringFixed(2))
		}
		if err := tx.Model(&member).Update("balance", balance).Error; err != nil {
			return fmt.Errorf("update balance: %w", err)
		}

		record = model.TransactionModel{
			MemberId:     member.Id,
			Type:         req.Type,
			Amount:       req.Amount,
			BalanceAfter: balance,
			Status:       model.TransactionStatusNormal,
			Operator:     req.Operator,
			Remark:       req.Remark,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		if req.Type != model.TransactionTypeConsume {
			return nil
		}
		points, pointType, err := consumePoints(tx, req.Amount)
		if err != nil || points == 0 {
			return err
		}
		if _, err := applyPointChange(tx, pointChange{
			MemberId:    member.Id,
			PointTypeId: pointType,
			Change:      points,
			Source:      model.PointSourceTransaction,
			RefId:       record.Id,
			Reason:      "consume",
			Operator:    req.Operator,
		}); err != nil {
			return err
		}
		record.Points = points
		return tx.Model(&record).Update("points", points).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// consumePoints 消费金额按积分比例取整, 积分类型停用时不赠送
func consumePoints(tx *gorm.DB, amount decimal.Decimal) (int64, int64, error) {
	var pt model.PointTypeModel
	err := tx.Where("code = ?", PointTypeConsume).First(&pt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("load consume point type: %w", err)
	}
	if !pt.Enabled || !pt.Ratio.IsPositive() {
		return 0, pt.Id, nil
	}
	return amount.Mul(pt.Ratio).Floor().IntPart(), pt.Id, nil
}

// Void 作废交易, 回退余额和赠送的积分
func (l *TransactionLogic) Void(ctx context.Context, id int64, operator string) (*model.TransactionModel, error) {
	var record model.TransactionModel
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&record, id).Error; err != nil {
			return notFound(err, "transaction %d", id)
		}
		if record.Status == model.TransactionStatusVoid {
			return fmt.Errorf("transaction %d already void: %w", id, ErrConflict)
		}

		var member model.MemberModel
		if err := forUpdate(tx).First(&member, record.MemberId).Error; err != nil {
			return notFound(err, "member %d", record.MemberId)
		}
		balance := member.Balance.Sub(balanceDelta(record.Type, record.Amount))
		if balance.IsNegative() {
			return invalid("id", "voiding would make balance negative (%s)", balance.StringFixed(2))
		}
		if err := tx.Model(&member).Update("balance", balance).Error; err != nil {
			return fmt.Errorf("update balance: %w", err)
		}

		if record.Points > 0 {
			var pt model.PointTransactionModel
			if err := tx.Where("source = ? AND ref_id = ?", model.PointSourceTransaction, record.Id).
				First(&pt).Error; err != nil {
				return fmt.Errorf("load awarded points: %w", err)
			}
			if _, err := applyPointChange(tx, pointChange{
				MemberId:    record.MemberId,
				PointTypeId: pt.PointTypeId,
				Change:      -record.Points,
				Source:      model.PointSourceTransaction,
				RefId:       record.Id,
				Reason:      "void",
				Operator:    operator,
			}); err != nil {
				return err
			}
		}

		return tx.Model(&record).Updates(map[string]interface{}{
			"status":     model.TransactionStatusVoid,
			"updated_at": time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Get 交易详情
func (l *TransactionLogic) Get(ctx context.Context, id int64) (*model.TransactionModel, error) {
	var record model.TransactionModel
	if err := l.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, notFound(err, "transaction %d", id)
	}
	return &record, nil
}

// List 交易列表, 按时间倒序
func (l *TransactionLogic) List(ctx context.Context, filter TransactionFilter) ([]model.TransactionModel, int64, error) {
	query := l.db.WithContext(ctx).Model(&model.TransactionModel{})
	if filter.MemberId > 0 {
		query = query.Where("member_id = ?", filter.MemberId)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != "" {
		from, err := time.Parse(DateLayout, filter.From)
		if err != nil {
			return nil, 0, invalid("from", "must be YYYY-MM-DD")
		}
		query = query.Where("created_at >= ?", from)
	}
	if filter.To != "" {
		to, err := time.Parse(DateLayout, filter.To)
		if err != nil {
			return nil, 0, invalid("to", "must be YYYY-MM-DD")
		}
		query = query.Where("created_at < ?", to.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}
	var records []model.TransactionModel
	if err := query.Scopes(filter.Page.scope).Order("id DESC").Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return records, total, nil
}
