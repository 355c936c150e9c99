package settlement

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func TestCalculateCycleSampleData(t *testing.T) {
	res, err := CalculateCycle([3]decimal.Decimal{d("42800"), d("-50500"), d("196300")}, d("10"))
	require.NoError(t, err)

	assertDecimal(t, "188600", res.TotalProfit)
	assertDecimal(t, "18860", res.ValuePerShare)
	assertDecimal(t, "9430", res.ValuePerHalfShare)
	assertDecimal(t, "10", res.TotalShares)
}

func TestCalculateCycleProperties(t *testing.T) {
	tests := []struct {
		name   string
		days   [3]string
		shares string
	}{
		{"all profit", [3]string{"100", "200", "300"}, "10"},
		{"fractional", [3]string{"0.10", "0.20", "0.05"}, "3"},
		{"odd shares", [3]string{"1000", "0", "1"}, "7"},
		{"half share holder count", [3]string{"-5", "10", "2.5"}, "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, c := d(tt.days[0]), d(tt.days[1]), d(tt.days[2])
			shares := d(tt.shares)

			res, err := CalculateCycle([3]decimal.Decimal{a, b, c}, shares)
			require.NoError(t, err)

			sum := a.Add(b).Add(c)
			assert.True(t, sum.Equal(res.TotalProfit))
			assert.True(t, sum.Div(shares).Equal(res.ValuePerShare))
			assert.True(t, res.ValuePerShare.Div(decimal.NewFromInt(2)).Equal(res.ValuePerHalfShare))
		})
	}
}

func TestCalculateCycleZeroShares(t *testing.T) {
	for _, shares := range []string{"0", "-1"} {
		_, err := CalculateCycle([3]decimal.Decimal{d("1"), d("2"), d("3")}, d(shares))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration))

		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "totalShares", cfgErr.Field)
	}
}

func TestCalculateCycleLossPropagatesSign(t *testing.T) {
	res, err := CalculateCycle([3]decimal.Decimal{d("-300"), d("100"), d("-50")}, d("10"))
	require.NoError(t, err)

	assertDecimal(t, "-250", res.TotalProfit)
	assert.True(t, res.ValuePerShare.IsNegative())
	assert.True(t, res.ValuePerHalfShare.IsNegative())
	assertDecimal(t, "-25", res.ValuePerShare)
	assertDecimal(t, "-12.5", res.ValuePerHalfShare)
}

func TestPayouts(t *testing.T) {
	res, err := CalculateCycle([3]decimal.Decimal{d("42800"), d("-50500"), d("196300")}, d("10"))
	require.NoError(t, err)

	payouts := Payouts(res.ShareAllocation, []Holding{
		{MemberID: 1, Name: "A", Shares: d("2")},
		{MemberID: 2, Name: "B", Shares: d("0.5")},
		{MemberID: 3, Name: "C", Shares: d("0")},
	})

	require.Len(t, payouts, 2)
	assertDecimal(t, "37720", payouts[0].Amount)
	assert.True(t, payouts[1].Amount.Equal(res.ValuePerHalfShare))
}

func TestPayoutsHalfShareWithRepeatingQuotient(t *testing.T) {
	res, err := CalculateCycle([3]decimal.Decimal{d("1"), d("0"), d("0")}, d("3"))
	require.NoError(t, err)

	payouts := Payouts(res.ShareAllocation, []Holding{
		{MemberID: 1, Name: "half", Shares: d("0.5")},
		{MemberID: 2, Name: "one and a half", Shares: d("1.5")},
	})

	require.Len(t, payouts, 2)
	assert.True(t, payouts[0].Amount.Equal(res.ValuePerHalfShare),
		"half share %s, value per half share %s", payouts[0].Amount, res.ValuePerHalfShare)
	assert.True(t, payouts[1].Amount.Equal(res.ValuePerHalfShare.Mul(d("3"))))
}
