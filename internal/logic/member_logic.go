package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/blues/memberadmin/internal/model"
	"github.com/blues/memberadmin/internal/settlement"
	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
	"gorm.io/gorm"
)

// CreateMemberRequest 新增会员
type CreateMemberRequest struct {
	MemberNo string          `json:"memberNo" validate:"required,max=32"`
	Name     string          `json:"name" validate:"required,max=64"`
	Phone    string          `json:"phone" validate:"max=32"`
	Shares   decimal.Decimal `json:"shares"`
	AgentId  *int64          `json:"agentId"`
	Remark   string          `json:"remark" validate:"max=255"`
}

// UpdateMemberRequest 修改会员, 只更新非空字段
type UpdateMemberRequest struct {
	Name    *string             `json:"name" validate:"omitempty,min=1,max=64"`
	Phone   *string             `json:"phone" validate:"omitempty,max=32"`
	Shares  *decimal.Decimal    `json:"shares"`
	AgentId *int64              `json:"agentId"`
	Status  *model.MemberStatus `json:"status" validate:"omitempty,oneof=active inactive"`
	Remark  *string             `json:"remark" validate:"omitempty,max=255"`
}

// MemberFilter 会员查询条件
type MemberFilter struct {
	Keyword string
	Status  string
	Page
}

// MemberLogic 会员业务逻辑
type MemberLogic struct {
	db     *gorm.DB
	region string
}

// NewMemberLogic region 为手机号默认地区, 例如 CN
func NewMemberLogic(db *gorm.DB, region string) *MemberLogic {
	if region == "" {
		region = "CN"
	}
	return &MemberLogic{db: db, region: region}
}

// NormalizePhone 校验并格式化为 E164, 空号码原样返回
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", invalid("phone", "cannot be parsed: %v", err)
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", invalid("phone", "is not a valid number for %s", region)
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}

func validateShares(shares decimal.Decimal) error {
	if shares.IsNegative() {
		return invalid("shares", "must not be negative")
	}
	if !isHalfStep(shares) {
		return invalid("shares", "must be a multiple of 0.5")
	}
	return nil
}

// Create 新增会员
func (m *MemberLogic) Create(ctx context.Context, req CreateMemberRequest) (*model.MemberModel, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := validateShares(req.Shares); err != nil {
		return nil, err
	}
	phone, err := NormalizePhone(req.Phone, m.region)
	if err != nil {
		return nil, err
	}
	if err := m.checkAgent(ctx, req.AgentId); err != nil {
		return nil, err
	}

	member := model.MemberModel{
		MemberNo: strings.TrimSpace(req.MemberNo),
		Name:     strings.TrimSpace(req.Name),
		Phone:    phone,
		Shares:   req.Shares,
		Balance:  decimal.Zero,
		AgentId:  req.AgentId,
		Status:   model.MemberStatusActive,
		Remark:   req.Remark,
	}
	if err := m.db.WithContext(ctx).Create(&member).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("member no %q: %w", member.MemberNo, ErrConflict)
		}
		return nil, fmt.Errorf("create member: %w", err)
	}
	return &member, nil
}

// List 会员列表, keyword 匹配会员号、姓名、手机号
func (m *MemberLogic) List(ctx context.Context, filter MemberFilter) ([]model.MemberModel, int64, error) {
	query := m.db.WithContext(ctx).Model(&model.MemberModel{})
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("member_no LIKE ? OR name LIKE ? OR phone LIKE ?", like, like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}

	var members []model.MemberModel
	if err := query.Scopes(filter.Page.scope).Order("id DESC").Find(&members).Error; err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}
	return members, total, nil
}

// Get 会员详情
func (m *MemberLogic) Get(ctx context.Context, id int64) (*model.MemberModel, error) {
	var member model.MemberModel
	if err := m.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, notFound(err, "member %d", id)
	}
	return &member, nil
}

// Update 修改会员资料, 余额只能通过交易变动
func (m *MemberLogic) Update(ctx context.Context, id int64, req UpdateMemberRequest) (*model.MemberModel, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	member, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		phone, err := NormalizePhone(*req.Phone, m.region)
		if err != nil {
			return nil, err
		}
		updates["phone"] = phone
	}
	if req.Shares != nil {
		if err := validateShares(*req.Shares); err != nil {
			return nil, err
		}
		updates["shares"] = *req.Shares
	}
	if req.AgentId != nil {
		if err := m.checkAgent(ctx, req.AgentId); err != nil {
			return nil, err
		}
		updates["agent_id"] = *req.AgentId
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Remark != nil {
		updates["remark"] = *req.Remark
	}
	if len(updates) == 0 {
		return member, nil
	}

	if err := m.db.WithContext(ctx).Model(member).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update member %d: %w", id, err)
	}
	return m.Get(ctx, id)
}

// Delete 删除没有交易记录的会员, 有交易的会员只能停用
func (m *MemberLogic) Delete(ctx context.Context, id int64) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member model.MemberModel
		if err := tx.First(&member, id).Error; err != nil {
			return notFound(err, "member %d", id)
		}

		var count int64
		if err := tx.Model(&model.TransactionModel{}).Where("member_id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("count transactions: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("member %d has %d transactions, deactivate instead: %w", id, count, ErrConflict)
		}

		if err := tx.Where("member_id = ?", id).Delete(&model.MemberPointModel{}).Error; err != nil {
			return fmt.Errorf("delete member points: %w", err)
		}
		return tx.Delete(&member).Error
	})
}

// Holdings 正常状态且持股大于 0 的会员
func (m *MemberLogic) Holdings(ctx context.Context) ([]settlement.Holding, error) {
	var members []model.MemberModel
	if err := m.db.WithContext(ctx).
		Where("status = ? AND shares > 0", model.MemberStatusActive).
		Order("id").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("load share holdings: %w", err)
	}

	holdings := make([]settlement.Holding, 0, len(members))
	for _, mb := range members {
		holdings = append(holdings, settlement.Holding{MemberID: mb.Id, Name: mb.Name, Shares: mb.Shares})
	}
	return holdings, nil
}

func (m *MemberLogic) checkAgent(ctx context.Context, agentID *int64) error {
	if agentID == nil {
		return nil
	}
	var count int64
	if err := m.db.WithContext(ctx).Model(&model.AgentModel{}).Where("id = ?", *agentID).Count(&count).Error; err != nil {
		return fmt.Errorf("check agent: %w", err)
	}
	if count == 0 {
		return invalid("agentId", "agent %d does not exist", *agentID)
	}
	return nil
}
