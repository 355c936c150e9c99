package logic_test

import (
	"context"
	"testing"

	"github.com/blues/memberadmin/internal/logic"
	"github.com/blues/memberadmin/internal/model"
	"github.com/blues/memberadmin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunds(t *testing.T) {
	catalog := logic.NewCatalogLogic(testutil.NewDB(t), "CN")
	ctx := context.Background()

	categories, err := catalog.ListFundCategories(ctx)
	require.NoError(t, err)
	byCode := make(map[string]model.FundCategoryModel)
	for _, c := range categories {
		byCode[c.Code] = c
	}
	require.Contains(t, byCode, "gaming")
	require.Contains(t, byCode, "rent")

	_, err = catalog.CreateFund(ctx, logic.CreateFundRequest{CategoryId: byCode["gaming"].Id, Date: "2024-03-01", Amount: d("500")})
	require.NoError(t, err)
	_, err = catalog.CreateFund(ctx, logic.CreateFundRequest{CategoryId: byCode["rent"].Id, Date: "2024-03-02", Amount: d("-300")})
	require.NoError(t, err)

	var verr *logic.ValidationError
	_, err = catalog.CreateFund(ctx, logic.CreateFundRequest{CategoryId: byCode["rent"].Id, Date: "2024-03-02", Amount: d("300")})
	require.ErrorAs(t, err, &verr)
	_, err = catalog.CreateFund(ctx, logic.CreateFundRequest{CategoryId: 999, Date: "2024-03-02", Amount: d("1")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "categoryId", verr.Field)

	funds, total, err := catalog.ListFunds(ctx, logic.FundFilter{From: "2024-03-02"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assertDecimal(t, "-300", funds[0].Amount)
}

func TestAgents(t *testing.T) {
	catalog := logic.NewCatalogLogic(testutil.NewDB(t), "CN")
	ctx := context.Background()

	agent, err := catalog.CreateAgent(ctx, logic.CreateAgentRequest{Name: "Wang", Phone: "13900139000", CommissionRate: d("0.05")})
	require.NoError(t, err)
	assert.Equal(t, "+8613900139000", agent.Phone)

	_, err = catalog.CreateAgent(ctx, logic.CreateAgentRequest{Name: "Greedy", CommissionRate: d("1.5")})
	var verr *logic.ValidationError
	require.ErrorAs(t, err, &verr)

	agents, err := catalog.ListAgents(ctx)
	require.NoError(t, err)
	assert.Len(t, agents, 1)
}
