package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/blues/memberadmin/internal/config"
	"github.com/blues/memberadmin/internal/logic"
	"github.com/blues/memberadmin/internal/repository"
	"github.com/blues/memberadmin/internal/router"
	"github.com/blues/memberadmin/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)

	auth := logic.NewAuthLogic(db, config.AuthConfig{Secret: "test-secret", TokenHours: 1})
	engine := router.Setup(router.Deps{
		Server:       config.ServerConfig{AllowOrigins: []string{"*"}},
		Auth:         auth,
		Members:      logic.NewMemberLogic(db, "CN"),
		Points:       logic.NewPointLogic(db),
		Transactions: logic.NewTransactionLogic(db),
		Ledgers:      logic.NewLedgerLogic(db, nil),
		Settlements:  logic.NewSettlementLogic(db, logic.SettlementOptions{DefaultShares: decimal.NewFromInt(10)}),
		Settings:     logic.NewSettingLogic(db),
		Buttons:      logic.NewButtonLogic(logic.NewSettingButtonStore(db)),
		Catalog:      logic.NewCatalogLogic(db, "CN"),
		Health:       repository.NewRegistry(time.Second, repository.NewGormChecker(db)),
	})
	return &testServer{t: t, engine: engine}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) decode(w *httptest.ResponseRecorder, data interface{}) envelope {
	s.t.Helper()
	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(s.t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (s *testServer) login() {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/login", map[string]string{
		"username": testutil.SeedOptions.AdminUsername,
		"password": testutil.SeedOptions.AdminPassword,
	})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Token string `json:"token"`
	}
	s.decode(w, &result)
	require.NotEmpty(s.t, result.Token)
	s.token = result.Token
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.do(http.MethodGet, "/api/health/database", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var statuses []repository.Status
	env := s.decode(w, &statuses)
	assert.True(t, env.Success)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Healthy)
}

func TestRequestIDPassthrough(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/members", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.token = "not-a-jwt"
	w = s.do(http.MethodGet, "/api/members", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, s.decode(w, nil).Success)
}

func TestMemberAndTransactionFlow(t *testing.T) {
	s := newTestServer(t)
	s.login()

	w := s.do(http.MethodPost, "/api/members", map[string]interface{}{
		"memberNo": "M001",
		"name":     "Alice",
		"phone":    "13800138000",
		"shares":   "2.5",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var member struct {
		Id    int64  `json:"id"`
		Phone string `json:"phone"`
	}
	s.decode(w, &member)
	assert.Equal(t, "+8613800138000", member.Phone)

	w = s.do(http.MethodPost, "/api/members", map[string]interface{}{"memberNo": "M001", "name": "Dup"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/transactions", map[string]interface{}{
		"memberId": member.Id,
		"type":     "deposit",
		"amount":   "500",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/transactions", map[string]interface{}{
		"memberId": member.Id,
		"type":     "withdraw",
		"amount":   "900",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/members?keyword=Alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items      []json.RawMessage `json:"items"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	s.decode(w, &list)
	assert.Len(t, list.Items, 1)
	assert.EqualValues(t, 1, list.Pagination.Total)

	w = s.do(http.MethodGet, "/api/members/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/members/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLedgerSettlementFlow(t *testing.T) {
	s := newTestServer(t)
	s.login()

	w := s.do(http.MethodGet, "/api/settlements?action=latest-period", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var latest struct {
		PeriodNumber int `json:"periodNumber"`
	}
	s.decode(w, &latest)
	assert.Equal(t, 1, latest.PeriodNumber)

	days := []map[string]interface{}{
		{"date": "2024-03-01", "revenue": map[string]string{"gaming": "50000"}, "expense": map[string]string{"rent": "-7200"}},
		{"date": "2024-03-02", "expense": map[string]string{"operations": "-50500"}},
		{"date": "2024-03-03", "revenue": map[string]string{"gaming": "180000", "services": "15000", "other": "5000"}, "expense": map[string]string{"staff": "-3700"}},
	}
	for _, day := range days {
		w = s.do(http.MethodPost, "/api/ledgers", day)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = s.do(http.MethodPost, "/api/ledgers", map[string]interface{}{
		"date":    "2024-03-04",
		"revenue": map[string]string{"gaming": "-1"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/settlements?action=latest-period", nil)
	s.decode(w, &latest)
	assert.Equal(t, 4, latest.PeriodNumber)

	w = s.do(http.MethodGet, "/api/settlements?action=preview&cycle=1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var preview struct {
		Complete    bool            `json:"complete"`
		TotalProfit decimal.Decimal `json:"totalProfit"`
	}
	s.decode(w, &preview)
	assert.True(t, preview.Complete)
	assert.True(t, decimal.NewFromInt(188600).Equal(preview.TotalProfit))

	w = s.do(http.MethodGet, "/api/settlements?action=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, bad := range []string{"abc", "-1", "0", "1.5"} {
		w = s.do(http.MethodGet, "/api/settlements?action=preview&cycle="+bad, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "cycle=%s", bad)
		assert.Contains(t, w.Body.String(), "invalid cycle")
	}

	// no cycle previews the current one
	w = s.do(http.MethodGet, "/api/settlements?action=preview", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &preview)
	assert.True(t, preview.Complete)

	w = s.do(http.MethodPost, "/api/settlements", map[string]int{"cycleNumber": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var dividend struct {
		Id            int64           `json:"id"`
		ValuePerShare decimal.Decimal `json:"value_per_share"`
		SettledBy     string          `json:"settled_by"`
	}
	s.decode(w, &dividend)
	assert.True(t, decimal.NewFromInt(18860).Equal(dividend.ValuePerShare))
	assert.Equal(t, "admin", dividend.SettledBy)

	w = s.do(http.MethodPost, "/api/settlements", map[string]int{"cycleNumber": 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/settlements", map[string]int{"cycleNumber": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/settlements/"+strconv.FormatInt(dividend.Id, 10)+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "dividend_cycle_1.xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestCalculateEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.login()

	w := s.do(http.MethodPost, "/api/settlements/calculate", map[string]interface{}{
		"dailyProfits": []string{"42800", "-50500", "196300"},
		"totalShares":  "10",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result struct {
		TotalProfit decimal.Decimal `json:"totalProfit"`
	}
	s.decode(w, &result)
	assert.True(t, decimal.NewFromInt(188600).Equal(result.TotalProfit))

	w = s.do(http.MethodPost, "/api/settlements/calculate", map[string]interface{}{
		"dailyProfits": []string{"1", "2", "3"},
		"totalShares":  "0",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsAndButtons(t *testing.T) {
	s := newTestServer(t)
	s.login()

	w := s.do(http.MethodPut, "/api/settings/total_shares", map[string]string{"value": "12.5"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPut, "/api/settings/total_shares", map[string]string{"value": "12.3"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/settings/buttons", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cfg logic.ButtonConfig
	s.decode(w, &cfg)
	assert.Len(t, cfg.Buttons, 4)

	cfg.Buttons = cfg.Buttons[:2]
	w = s.do(http.MethodPut, "/api/settings/buttons", cfg)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var saved logic.ButtonConfig
	s.decode(w, &saved)
	assert.Len(t, saved.Buttons, 2)
	assert.Equal(t, cfg.Version+1, saved.Version)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/members", nil)
	req.Header.Set("Origin", "http://console.local")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBalancesAndVoidRoutes(t *testing.T) {
	s := newTestServer(t)
	s.login()

	w := s.do(http.MethodPost, "/api/ledgers/balances", map[string]interface{}{
		"date": "2024-03-01",
		"balances": []map[string]string{
			{"account": "cash", "opening": "1000", "closing": "1500"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/ledgers/balances?date=2024-03-01", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var snapshots []struct {
		AccountName string          `json:"accountName"`
		Difference  decimal.Decimal `json:"difference"`
	}
	s.decode(w, &snapshots)
	require.Len(t, snapshots, 1)
	assert.True(t, decimal.NewFromInt(500).Equal(snapshots[0].Difference))

	w = s.do(http.MethodPost, "/api/members", map[string]interface{}{"memberNo": "M9", "name": "Bob"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var member struct {
		Id int64 `json:"id"`
	}
	s.decode(w, &member)

	w = s.do(http.MethodPost, "/api/transactions", map[string]interface{}{"memberId": member.Id, "amount": "80"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var tx struct {
		Id int64 `json:"id"`
	}
	s.decode(w, &tx)

	w = s.do(http.MethodDelete, "/api/transactions/"+strconv.FormatInt(tx.Id, 10), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var voided struct {
		Status string `json:"status"`
	}
	s.decode(w, &voided)
	assert.Equal(t, "void", voided.Status)
}
