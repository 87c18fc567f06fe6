package analytics

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrek-backend/controllers/apitest"
	"fintrek-backend/models"
	"fintrek-backend/models/dbtest"
	"fintrek-backend/services"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	db := dbtest.Open(t)
	now := time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)
	rows := []models.Transaction{
		{UserID: "u1", Amount: decimal.NewFromInt(1000), Type: models.TransactionIncome, Category: "Salary", Date: now.AddDate(0, 0, -3)},
		{UserID: "u1", Amount: decimal.NewFromInt(300), Type: models.TransactionExpense, Category: "Rent", Date: now.AddDate(0, 0, -2)},
		{UserID: "u1", Amount: decimal.NewFromInt(100), Type: models.TransactionExpense, Category: "Food", Date: now.AddDate(0, 0, -1)},
		{UserID: "u1", Amount: decimal.NewFromInt(50), Type: models.TransactionExpense, Category: "Food", Date: now.AddDate(0, -2, 0)},
		{UserID: "u2", Amount: decimal.NewFromInt(999), Type: models.TransactionExpense, Category: "Food", Date: now.AddDate(0, 0, -1)},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	return &Handler{DB: db, Now: func() time.Time { return now }}
}

func TestSummary(t *testing.T) {
	h := newHandler(t)
	rec := apitest.Call(t, h.Summary, http.MethodGet, "/analytics/summary?period=10", nil, "u1")
	apitest.Status(t, rec, http.StatusOK)

	s := apitest.Decode[map[string]services.Summary](t, rec)["summary"]
	if s.Period != "10 days" || s.TransactionCount != 3 {
		t.Fatalf("summary = %+v", s)
	}
	if !s.Balance.Equal(decimal.NewFromInt(600)) || !s.SavingsRate.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("balance/savings = %s/%s", s.Balance, s.SavingsRate)
	}
	if !s.AvgDailySpending.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("avg daily = %s", s.AvgDailySpending)
	}

	apitest.Status(t, apitest.Call(t, h.Summary, http.MethodGet, "/analytics/summary?period=0", nil, "u1"), http.StatusBadRequest)
}

func TestCategory(t *testing.T) {
	h := newHandler(t)
	rec := apitest.Call(t, h.Category, http.MethodGet, "/analytics/category", nil, "u1")
	apitest.Status(t, rec, http.StatusOK)

	b := apitest.Decode[map[string]services.Breakdown](t, rec)["breakdown"]
	if b.Type != models.TransactionExpense || len(b.Categories) != 2 {
		t.Fatalf("breakdown = %+v", b)
	}
	if b.Categories[0].Name != "Rent" || !b.Categories[0].Percentage.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("first category = %+v", b.Categories[0])
	}

	apitest.Status(t, apitest.Call(t, h.Category, http.MethodGet, "/analytics/category?type=gift", nil, "u1"), http.StatusBadRequest)
}

func TestTrends(t *testing.T) {
	h := newHandler(t)
	rec := apitest.Call(t, h.Trends, http.MethodGet, "/analytics/trends?months=3", nil, "u1")
	apitest.Status(t, rec, http.StatusOK)

	tr := apitest.Decode[map[string]services.Trends](t, rec)["trends"]
	if len(tr.Data) != 2 || tr.Data[0].Month != "2026-02" || tr.Data[1].Month != "2026-04" {
		t.Fatalf("trends = %+v", tr)
	}
	if !tr.Data[1].Balance.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("april balance = %s", tr.Data[1].Balance)
	}

	apitest.Status(t, apitest.Call(t, h.Trends, http.MethodGet, "/analytics/trends?months=61", nil, "u1"), http.StatusBadRequest)
}
