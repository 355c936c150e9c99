package logic_test

import (
	"context"
	"testing"

	"github.com/blues/memberadmin/internal/logic"
	"github.com/blues/memberadmin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLedgerAssignsCurrentPeriod(t *testing.T) {
	db := testutil.NewDB(t)
	ledgers := logic.NewLedgerLogic(db, nil)
	ctx := context.Background()

	first, err := ledgers.Create(ctx, sampleDays[0])
	require.NoError(t, err)
	assert.Equal(t, 1, first.PeriodNumber)
	assertDecimal(t, "42800", first.NetProfit)

	second, err := ledgers.Create(ctx, sampleDays[1])
	require.NoError(t, err)
	assert.Equal(t, 2, second.PeriodNumber)
	assertDecimal(t, "-50500", second.NetProfit)

	got, err := ledgers.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", got.BusinessDate.Format(logic.DateLayout))

	list, total, err := ledgers.List(ctx, logic.LedgerFilter{Cycle: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, 2, list[0].PeriodNumber)

	_, err = ledgers.Get(ctx, 9)
	assert.ErrorIs(t, err, logic.ErrNotFound)
}

func TestCreateLedgerValidation(t *testing.T) {
	db := testutil.NewDB(t)
	ledgers := logic.NewLedgerLogic(db, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   logic.CreateLedgerRequest
		field string
	}{
		{
			name:  "positive expense",
			req:   logic.CreateLedgerRequest{Date: "2024-03-01", Expense: expense("0", "0", "0", "100", "0")},
			field: "expense.rent",
		},
		{
			name:  "negative revenue",
			req:   logic.CreateLedgerRequest{Date: "2024-03-01", Revenue: revenue("-1", "0", "0")},
			field: "revenue.gaming",
		},
		{
			name:  "bad date",
			req:   logic.CreateLedgerRequest{Date: "03/01/2024"},
			field: "date",
		},
		{
			name:  "skips ahead",
			req:   logic.CreateLedgerRequest{Date: "2024-03-01", PeriodNumber: intPtr(5)},
			field: "periodNumber",
		},
		{
			name:  "zero period",
			req:   logic.CreateLedgerRequest{Date: "2024-03-01", PeriodNumber: intPtr(0)},
			field: "periodNumber",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledgers.Create(ctx, tt.req)
			var verr *logic.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCreateLedgerIsUniquePerPeriodAndDate(t *testing.T) {
	db := testutil.NewDB(t)
	ledgers := logic.NewLedgerLogic(db, nil)
	ctx := context.Background()

	_, err := ledgers.Create(ctx, sampleDays[0])
	require.NoError(t, err)

	_, err = ledgers.Create(ctx, sampleDays[0])
	assert.ErrorIs(t, err, logic.ErrConflict)

	_, err = ledgers.Create(ctx, logic.CreateLedgerRequest{Date: "2024-03-09", PeriodNumber: intPtr(1)})
	assert.ErrorIs(t, err, logic.ErrConflict)
}

func TestSettledCycleRejectsNewLedgers(t *testing.T) {
	db := testutil.NewDB(t)
	ledgers := logic.NewLedgerLogic(db, nil)
	ctx := context.Background()
	recordSampleCycle(t, ledgers)

	_, err := newSettlement(t, db, nil).Settle(ctx, logic.SettleRequest{CycleNumber: 1})
	require.NoError(t, err)
	// 删除第 3 期模拟补录
	require.NoError(t, db.Exec("DELETE FROM daily_ledgers WHERE period_number = 3").Error)

	_, err = ledgers.Create(ctx, logic.CreateLedgerRequest{Date: "2024-03-05", PeriodNumber: intPtr(3)})
	assert.ErrorIs(t, err, logic.ErrConflict)
}

func TestAccountBalances(t *testing.T) {
	db := testutil.NewDB(t)
	ledgers := logic.NewLedgerLogic(db, nil)
	ctx := context.Background()

	_, err := ledgers.RecordBalances(ctx, logic.RecordBalancesRequest{
		Date: "2024-03-01",
		Balances: []logic.BalanceInput{
			{Account: "cash", Opening: d("1000"), Closing: d("1500")},
			{Account: "bank", Opening: d("20000"), Closing: d("19000")},
		},
	})
	require.NoError(t, err)

	snaps, err := ledgers.RecordBalances(ctx, logic.RecordBalancesRequest{
		Date: "2024-03-02",
		Balances: []logic.BalanceInput{
			{Account: "cash", Opening: d("1500"), Closing: d("1200")},
			{Account: "receivables", Opening: d("0"), Closing: d("300")},
		},
	})
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	cash := snaps[0]
	assert.Equal(t, "cash", cash.AccountName)
	assertDecimal(t, "-300", cash.Difference)
	assertDecimal(t, "-300", cash.DailyDelta)

	recv := snaps[1]
	assert.Equal(t, "receivables", recv.AccountName)
	assertDecimal(t, "300", recv.Difference)
	assertDecimal(t, "300", recv.DailyDelta)

	// 覆盖同一天的记录
	snaps, err = ledgers.RecordBalances(ctx, logic.RecordBalancesRequest{
		Date:     "2024-03-02",
		Balances: []logic.BalanceInput{{Account: "cash", Opening: d("1500"), Closing: d("1600")}},
	})
	require.NoError(t, err)
	assertDecimal(t, "100", snaps[0].DailyDelta)

	_, err = ledgers.RecordBalances(ctx, logic.RecordBalancesRequest{
		Date:     "2024-03-02",
		Balances: []logic.BalanceInput{{Account: "wallet"}},
	})
	var verr *logic.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func intPtr(v int) *int {
	return &v
}
