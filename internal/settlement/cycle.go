package settlement

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DaysPerCycle 每个分红周期包含的营业日数
const DaysPerCycle = 3

// ValidatePeriod 期号从 1 开始
func ValidatePeriod(period int) error {
	if period < 1 {
		return &ConfigurationError{Field: "periodNumber", Reason: fmt.Sprintf("must be >= 1, got %d", period)}
	}
	return nil
}

// CycleNumber 期号所属的分红周期, 小于 1 的期号按第 1 期处理
func CycleNumber(period int) int {
	if period < 1 {
		period = 1
	}
	return (period-1)/DaysPerCycle + 1
}

// DayOfCycle 期号在周期中的第几天 (1..3)
func DayOfCycle(period int) int {
	if period < 1 {
		period = 1
	}
	return (period-1)%DaysPerCycle + 1
}

// CyclePeriods 周期包含的期号
func CyclePeriods(cycle int) [DaysPerCycle]int {
	first := (cycle-1)*DaysPerCycle + 1
	return [DaysPerCycle]int{first, first + 1, first + 2}
}

// DividendCycle 分红周期
type DividendCycle struct {
	CycleNumber int               `json:"cycleNumber"`
	StartDate   time.Time         `json:"startDate"`
	Periods     []int             `json:"periods"`
	Days        []decimal.Decimal `json:"days"`
	TotalProfit decimal.Decimal   `json:"totalProfit"`
}

// Complete 正好三天时周期才完整
func (c DividendCycle) Complete() bool {
	return len(c.Days) == DaysPerCycle
}

// CurrentDay 最近一期在周期中的位置, 用于 "第 N/3 天" 提示
func (c DividendCycle) CurrentDay() int {
	if len(c.Periods) == 0 {
		return 0
	}
	return DayOfCycle(c.Periods[len(c.Periods)-1])
}

// Progress 例如 "day 2 of 3"
func (c DividendCycle) Progress() string {
	return fmt.Sprintf("day %d of %d", c.CurrentDay(), DaysPerCycle)
}

// Calculate 完整周期的分红计算
func (c DividendCycle) Calculate(totalShares decimal.Decimal) (CycleResult, error) {
	if !c.Complete() {
		return CycleResult{}, fmt.Errorf("cycle %d has %d of %d days: %w",
			c.CycleNumber, len(c.Days), DaysPerCycle, ErrIncompleteCycle)
	}
	return CalculateCycle([DaysPerCycle]decimal.Decimal{c.Days[0], c.Days[1], c.Days[2]}, totalShares)
}

// BuildCycle 把同一周期内的日账按期号排序组成分红周期
func BuildCycle(entries []DailyLedgerEntry) (DividendCycle, error) {
	if len(entries) == 0 {
		return DividendCycle{}, ErrEmptyCycle
	}

	sorted := make([]DailyLedgerEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PeriodNumber < sorted[j].PeriodNumber })

	for _, e := range sorted {
		if err := ValidatePeriod(e.PeriodNumber); err != nil {
			return DividendCycle{}, err
		}
	}

	cycle := DividendCycle{
		CycleNumber: CycleNumber(sorted[0].PeriodNumber),
		StartDate:   sorted[0].Date,
		TotalProfit: decimal.Zero,
	}
	for i, e := range sorted {
		if CycleNumber(e.PeriodNumber) != cycle.CycleNumber {
			return DividendCycle{}, fmt.Errorf("period %d is not in cycle %d: %w",
				e.PeriodNumber, cycle.CycleNumber, ErrCycleMismatch)
		}
		if i > 0 && sorted[i-1].PeriodNumber == e.PeriodNumber {
			return DividendCycle{}, fmt.Errorf("period %d: %w", e.PeriodNumber, ErrDuplicatePeriod)
		}
		net := NetProfit(e)
		cycle.Periods = append(cycle.Periods, e.PeriodNumber)
		cycle.Days = append(cycle.Days, net)
		cycle.TotalProfit = cycle.TotalProfit.Add(net)
	}

	return cycle, nil
}
