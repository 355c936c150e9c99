package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blues/memberadmin/internal/logic"
	"github.com/blues/memberadmin/internal/settlement"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &logic.ValidationError{Field: "amount", Message: "must be greater than zero"}, http.StatusBadRequest},
		{"configuration", &settlement.ConfigurationError{Field: "totalShares", Reason: "zero"}, http.StatusBadRequest},
		{"incomplete cycle", fmt.Errorf("cycle 2: %w", settlement.ErrIncompleteCycle), http.StatusBadRequest},
		{"empty cycle", settlement.ErrEmptyCycle, http.StatusBadRequest},
		{"not found", fmt.Errorf("member 9: %w", logic.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("cycle 1 settled: %w", logic.ErrConflict), http.StatusConflict},
		{"unauthorized", logic.ErrUnauthorized, http.StatusUnauthorized},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestHandleErrorHidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/members", nil)

	HandleError(c, errors.New("dial tcp 10.0.0.1:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Message)
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}

func TestHandleErrorReturnsValidationField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/ledgers", nil)

	HandleError(c, &logic.ValidationError{Field: "expense.rent", Message: "must not be positive"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Data logic.ValidationError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "expense.rent", resp.Data.Field)
}

func TestPageFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/members?page=3&page_size=1000", nil)

	page := pageFromQuery(c)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 200, page.PageSize)

	p := NewPagination(logic.Page{Page: 1, PageSize: 20}, 41)
	assert.EqualValues(t, 3, p.TotalPage)
}
