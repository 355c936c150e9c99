package settlement

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(period int, gaming, rent string) DailyLedgerEntry {
	return DailyLedgerEntry{
		Date:         time.Date(2024, 3, period, 0, 0, 0, 0, time.UTC),
		PeriodNumber: period,
		Revenue:      Revenue{Gaming: d(gaming)},
		Expense:      Expense{Rent: d(rent)},
	}
}

func TestCyclePeriodMath(t *testing.T) {
	tests := []struct {
		period, cycle, day int
	}{
		{1, 1, 1}, {2, 1, 2}, {3, 1, 3}, {4, 2, 1}, {6, 2, 3}, {7, 3, 1}, {0, 1, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.cycle, CycleNumber(tt.period), "cycle of period %d", tt.period)
		assert.Equal(t, tt.day, DayOfCycle(tt.period), "day of period %d", tt.period)
	}

	assert.Equal(t, [3]int{4, 5, 6}, CyclePeriods(2))
	assert.Error(t, ValidatePeriod(0))
	assert.NoError(t, ValidatePeriod(1))
}

func TestBuildCycleComplete(t *testing.T) {
	cycle, err := BuildCycle([]DailyLedgerEntry{
		entry(6, "200000", "-3700"),
		entry(4, "50000", "-7200"),
		entry(5, "0", "-50500"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, cycle.CycleNumber)
	assert.Equal(t, []int{4, 5, 6}, cycle.Periods)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), cycle.StartDate)
	assert.True(t, cycle.Complete())
	assertDecimal(t, "42800", cycle.Days[0])
	assertDecimal(t, "188600", cycle.TotalProfit)

	res, err := cycle.Calculate(d("10"))
	require.NoError(t, err)
	assertDecimal(t, "18860", res.ValuePerShare)
}

func TestBuildCyclePartial(t *testing.T) {
	cycle, err := BuildCycle([]DailyLedgerEntry{entry(7, "10", "0"), entry(8, "20", "0")})
	require.NoError(t, err)

	assert.False(t, cycle.Complete())
	assert.Equal(t, 2, cycle.CurrentDay())
	assert.Equal(t, "day 2 of 3", cycle.Progress())

	_, err = cycle.Calculate(d("10"))
	assert.True(t, errors.Is(err, ErrIncompleteCycle))
}

func TestBuildCycleRejectsBadInput(t *testing.T) {
	_, err := BuildCycle(nil)
	assert.True(t, errors.Is(err, ErrEmptyCycle))

	_, err = BuildCycle([]DailyLedgerEntry{entry(3, "1", "0"), entry(4, "1", "0")})
	assert.True(t, errors.Is(err, ErrCycleMismatch))

	_, err = BuildCycle([]DailyLedgerEntry{entry(1, "1", "0"), entry(1, "1", "0")})
	assert.True(t, errors.Is(err, ErrDuplicatePeriod))

	_, err = BuildCycle([]DailyLedgerEntry{entry(0, "1", "0")})
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}
