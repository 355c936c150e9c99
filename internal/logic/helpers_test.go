package logic_test

import (
	"context"
	"sync"
	"testing"

	"github.com/blues/memberadmin/internal/logic"
	"github.com/blues/memberadmin/internal/model"
	"github.com/blues/memberadmin/internal/notify"
	"github.com/blues/memberadmin/internal/settlement"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got)
}

// sampleDays 三日净利润 42800, -50500, 196300
var sampleDays = []logic.CreateLedgerRequest{
	{
		Date:    "2024-03-01",
		Revenue: revenue("50000", "0", "0"),
		Expense: expense("0", "0", "0", "-7200", "0"),
	},
	{
		Date:    "2024-03-02",
		Revenue: revenue("0", "0", "0"),
		Expense: expense("-50500", "0", "0", "0", "0"),
	},
	{
		Date:    "2024-03-03",
		Revenue: revenue("180000", "15000", "5000"),
		Expense: expense("0", "-3700", "0", "0", "0"),
	},
}

func revenue(gaming, services, other string) settlement.Revenue {
	return settlement.Revenue{Gaming: d(gaming), Services: d(services), Other: d(other)}
}

func expense(operations, staff, misc, rent, system string) settlement.Expense {
	return settlement.Expense{Operations: d(operations), Staff: d(staff), Misc: d(misc), Rent: d(rent), System: d(system)}
}

func recordSampleCycle(t *testing.T, ledgers *logic.LedgerLogic) {
	t.Helper()
	for _, req := range sampleDays {
		_, err := ledgers.Create(context.Background(), req)
		require.NoError(t, err)
	}
}

func createMember(t *testing.T, db *gorm.DB, no, shares string) *model.MemberModel {
	t.Helper()
	m, err := logic.NewMemberLogic(db, "CN").Create(context.Background(), logic.CreateMemberRequest{
		MemberNo: no,
		Name:     "member " + no,
		Shares:   d(shares),
	})
	require.NoError(t, err)
	return m
}

// fakeDispatcher 同步回调, 记录发送参数
type fakeDispatcher struct {
	mu      sync.Mutex
	calls   []string
	outcome notify.Outcome
}

func (f *fakeDispatcher) Dispatch(channelID string, netProfit, valuePerShare decimal.Decimal, done func(notify.Outcome)) error {
	f.mu.Lock()
	f.calls = append(f.calls, channelID+"|"+netProfit.String()+"|"+valuePerShare.String())
	f.mu.Unlock()
	done(f.outcome)
	return nil
}

func (f *fakeDispatcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
