package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kavak-agent/internal/model"
	"kavak-agent/internal/service"
)

func TestFinanceHandler_Plan(t *testing.T) {
	r := gin.New()
	r.POST("/api/v1/finance/plan", NewFinanceHandler(service.FinanceSettings{}).Plan)

	t.Run("all allowed terms", func(t *testing.T) {
		w := postJSON(t, r, "/api/v1/finance/plan", model.FinancePlanRequest{Price: 350000, DownPayment: 50000})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[model.FinancePlanResponse](t, w)
		assert.Equal(t, 300000.0, resp.Principal)
		assert.Equal(t, 0.10, resp.AnnualRate)
		require.Len(t, resp.Plan, 4)
		assert.Equal(t, []int{36, 48, 60, 72}, []int{resp.Plan[0].TermMonths, resp.Plan[1].TermMonths, resp.Plan[2].TermMonths, resp.Plan[3].TermMonths})
		assert.InDelta(t, 9680, resp.Plan[0].MonthlyPayment, 1)
		assert.InDelta(t, 7609, resp.Plan[1].MonthlyPayment, 1)
	})

	t.Run("terms are snapped", func(t *testing.T) {
		w := postJSON(t, r, "/api/v1/finance/plan", model.FinancePlanRequest{Price: 350000, DownPayment: 50000, Terms: []int{50}})
		resp := decode[model.FinancePlanResponse](t, w)
		require.Len(t, resp.Plan, 1)
		assert.Equal(t, 48, resp.Plan[0].TermMonths)
	})

	t.Run("custom rate", func(t *testing.T) {
		w := postJSON(t, r, "/api/v1/finance/plan", map[string]any{"price": 120000, "terms": []int{36}, "annual_rate": 0})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[model.FinancePlanResponse](t, w)
		assert.Equal(t, 0.0, resp.AnnualRate)
		assert.InDelta(t, 120000.0/36, resp.Plan[0].MonthlyPayment, 1e-6)
	})

	bad := []struct {
		name string
		body any
	}{
		{"missing price", map[string]any{"down_payment": 1000}},
		{"down payment covers price", model.FinancePlanRequest{Price: 100000, DownPayment: 100000}},
		{"negative down payment", map[string]any{"price": 100000, "down_payment": -1}},
		{"bad term", model.FinancePlanRequest{Price: 100000, Terms: []int{0}}},
		{"rate as percent", map[string]any{"price": 100000, "annual_rate": 12}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, r, "/api/v1/finance/plan", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
