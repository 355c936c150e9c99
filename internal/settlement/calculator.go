package settlement

import (
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// ShareAllocation 每股分配, 由周期利润推导, 不单独存储
type ShareAllocation struct {
	TotalShares       decimal.Decimal `json:"totalShares"`
	ValuePerShare     decimal.Decimal `json:"valuePerShare"`
	ValuePerHalfShare decimal.Decimal `json:"valuePerHalfShare"`
}

// CycleResult 分红周期计算结果
type CycleResult struct {
	TotalProfit decimal.Decimal `json:"totalProfit"`
	ShareAllocation
}

// CalculateCycle 计算三日利润合计以及每股、每半股金额.
// 亏损周期的符号会带入每股金额, 总股数必须大于 0.
func CalculateCycle(dailyProfits [DaysPerCycle]decimal.Decimal, totalShares decimal.Decimal) (CycleResult, error) {
	if !totalShares.IsPositive() {
		return CycleResult{}, &ConfigurationError{
			Field:  "totalShares",
			Reason: "must be greater than zero, got " + totalShares.String(),
		}
	}

	total := decimal.Zero
	for _, p := range dailyProfits {
		total = total.Add(p)
	}

	perShare := total.Div(totalShares)
	return CycleResult{
		TotalProfit: total,
		ShareAllocation: ShareAllocation{
			TotalShares:       totalShares,
			ValuePerShare:     perShare,
			ValuePerHalfShare: perShare.Div(two),
		},
	}, nil
}

// Holding 会员持股
type Holding struct {
	MemberID int64           `json:"memberId"`
	Name     string          `json:"name"`
	Shares   decimal.Decimal `json:"shares"`
}

// MemberPayout 会员分红明细
type MemberPayout struct {
	MemberID int64           `json:"memberId"`
	Name     string          `json:"name"`
	Shares   decimal.Decimal `json:"shares"`
	Amount   decimal.Decimal `json:"amount"`
}

// Payouts 按持股生成分红明细, 持股为 0 的会员跳过.
// 金额按半股计: ValuePerHalfShare × (持股 × 2), 半股会员恰好得到 ValuePerHalfShare.
func Payouts(alloc ShareAllocation, holdings []Holding) []MemberPayout {
	payouts := make([]MemberPayout, 0, len(holdings))
	for _, h := range holdings {
		if h.Shares.IsZero() {
			continue
		}
		payouts = append(payouts, MemberPayout{
			MemberID: h.MemberID,
			Name:     h.Name,
			Shares:   h.Shares,
			Amount:   alloc.ValuePerHalfShare.Mul(h.Shares.Mul(two)),
		})
	}
	return payouts
}
