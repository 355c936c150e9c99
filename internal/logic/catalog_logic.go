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

// DateLayout 营业日期格式
const DateLayout = "2006-01-02"

// CreateFundRequest 新增资金记录, 支出分类金额为负数
type CreateFundRequest struct {
	CategoryId int64           `json:"categoryId" validate:"required,gt=0"`
	Date       string          `json:"date" validate:"required,datetime=2006-01-02"`
	Amount     decimal.Decimal `json:"amount"`
	Operator   string          `json:"-"`
	Remark     string          `json:"remark" validate:"max=255"`
}

// FundFilter 资金记录查询条件
type FundFilter struct {
	CategoryId int64
	From, To   string
	Page
}

// CreateAgentRequest 新增代理
type CreateAgentRequest struct {
	Name           string          `json:"name" validate:"required,max=64"`
	Phone          string          `json:"phone" validate:"max=32"`
	CommissionRate decimal.Decimal `json:"commissionRate"`
}

// CatalogLogic 资金分类、资金记录和代理
type CatalogLogic struct {
	db     *gorm.DB
	region string
}

// NewCatalogLogic 创建基础资料业务逻辑
func NewCatalogLogic(db *gorm.DB, region string) *CatalogLogic {
	if region == "" {
		region = "CN"
	}
	return &CatalogLogic{db: db, region: region}
}

// ListFundCategories 资金分类
func (c *CatalogLogic) ListFundCategories(ctx context.Context) ([]model.FundCategoryModel, error) {
	var categories []model.FundCategoryModel
	if err := c.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list fund categories: %w", err)
	}
	return categories, nil
}

// CreateFund 新增资金记录, 金额符号必须与分类方向一致
func (c *CatalogLogic) CreateFund(ctx context.Context, req CreateFundRequest) (*model.FundModel, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	date, err := time.Parse(DateLayout, req.Date)
	if err != nil {
		return nil, invalid("date", "must be YYYY-MM-DD")
	}

	var category model.FundCategoryModel
	if err := c.db.WithContext(ctx).First(&category, req.CategoryId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("categoryId", "fund category %d does not exist", req.CategoryId)
		}
		return nil, fmt.Errorf("load fund category: %w", err)
	}

	switch {
	case req.Amount.IsZero():
		return nil, invalid("amount", "must not be zero")
	case category.Direction == model.FundDirectionIncome && req.Amount.IsNegative():
		return nil, invalid("amount", "must be positive for income category %s", category.Code)
	case category.Direction == model.FundDirectionExpense && req.Amount.IsPositive():
		return nil, invalid("amount", "must be negative for expense category %s", category.Code)
	}

	fund := model.FundModel{
		CategoryId:   category.Id,
		BusinessDate: date,
		Amount:       req.Amount,
		Operator:     req.Operator,
		Remark:       req.Remark,
	}
	if err := c.db.WithContext(ctx).Create(&fund).Error; err != nil {
		return nil, fmt.Errorf("create fund: %w", err)
	}
	return &fund, nil
}

// ListFunds 资金记录, 按日期倒序
func (c *CatalogLogic) ListFunds(ctx context.Context, filter FundFilter) ([]model.FundModel, int64, error) {
	query := c.db.WithContext(ctx).Model(&model.FundModel{})
	if filter.CategoryId > 0 {
		query = query.Where("category_id = ?", filter.CategoryId)
	}
	if filter.From != "" {
		from, err := time.Parse(DateLayout, filter.From)
		if err != nil {
			return nil, 0, invalid("from", "must be YYYY-MM-DD")
		}
		query = query.Where("business_date >= ?", from)
	}
	if filter.To != "" {
		to, err := time.Parse(DateLayout, filter.To)
		if err != nil {
			return nil, 0, invalid("to", "must be YYYY-MM-DD")
		}
		query = query.Where("business_date <= ?", to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count funds: %w", err)
	}
	var funds []model.FundModel
	if err := query.Scopes(filter.Page.scope).Order("business_date DESC, id DESC").Find(&funds).Error; err != nil {
		return nil, 0, fmt.Errorf("list funds: %w", err)
	}
	return funds, total, nil
}

// ListAgents 代理列表
func (c *CatalogLogic) ListAgents(ctx context.Context) ([]model.AgentModel, error) {
	var agents []model.AgentModel
	if err := c.db.WithContext(ctx).Order("id").Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return agents, nil
}

// CreateAgent 新增代理, 佣金比例在 0 到 1 之间
func (c *CatalogLogic) CreateAgent(ctx context.Context, req CreateAgentRequest) (*model.AgentModel, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.CommissionRate.IsNegative() || req.CommissionRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, invalid("commissionRate", "must be between 0 and 1")
	}
	phone, err := NormalizePhone(req.Phone, c.region)
	if err != nil {
		return nil, err
	}

	agent := model.AgentModel{
		Name:           req.Name,
		Phone:          phone,
		CommissionRate: req.CommissionRate,
		Status:         model.MemberStatusActive,
	}
	if err := c.db.WithContext(ctx).Create(&agent).Error; err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return &agent, nil
}
