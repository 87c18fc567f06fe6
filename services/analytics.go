package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrek-backend/models"
)

var hundred = decimal.NewFromInt(100)

type Summary struct {
	Period           string          `json:"period"`
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transactionCount"`
	AvgDailySpending decimal.Decimal `json:"avgDailySpending"`
	SavingsRate      decimal.Decimal `json:"savingsRate"`
}

// Summarize totals the transactions of a period of days.
func Summarize(txs []models.Transaction, days int) Summary {
	income, expenses := decimal.Zero, decimal.Zero
	for _, t := range txs {
		if t.Type == models.TransactionIncome {
			income = income.Add(t.Amount)
		} else {
			expenses = expenses.Add(t.Amount)
		}
	}
	balance := income.Sub(expenses)
	s := Summary{
		Period:           fmt.Sprintf("%d days", days),
		TotalIncome:      income.Round(2),
		TotalExpenses:    expenses.Round(2),
		Balance:          balance.Round(2),
		TransactionCount: len(txs),
		AvgDailySpending: decimal.Zero,
		SavingsRate:      decimal.Zero,
	}
	if days > 0 {
		s.AvgDailySpending = expenses.Div(decimal.NewFromInt(int64(days))).Round(2)
	}
	if income.IsPositive() {
		s.SavingsRate = balance.Div(income).Mul(hundred).Round(2)
	}
	return s
}

type CategoryTotal struct {
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

type Breakdown struct {
	Type        string          `json:"type"`
	Period      string          `json:"period"`
	Categories  []CategoryTotal `json:"categories"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// BreakdownByCategory groups transactions of one type by category, largest first.
func BreakdownByCategory(txs []models.Transaction, txType string, days int) Breakdown {
	totals := map[string]decimal.Decimal{}
	grand := decimal.Zero
	for _, t := range txs {
		if t.Type != txType {
			continue
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
		grand = grand.Add(t.Amount)
	}

	categories := make([]CategoryTotal, 0, len(totals))
	for name, amount := range totals {
		pct := decimal.Zero
		if grand.IsPositive() {
			pct = amount.Div(grand).Mul(hundred).Round(2)
		}
		categories = append(categories, CategoryTotal{Name: name, Amount: amount.Round(2), Percentage: pct})
	}
	sort.Slice(categories, func(i, j int) bool {
		if c := categories[i].Amount.Cmp(categories[j].Amount); c != 0 {
			return c > 0
		}
		return categories[i].Name < categories[j].Name
	})

	return Breakdown{
		Type:        txType,
		Period:      fmt.Sprintf("%d days", days),
		Categories:  categories,
		TotalAmount: grand.Round(2),
	}
}

type MonthTrend struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

type Trends struct {
	Period string       `json:"period"`
	Data   []MonthTrend `json:"data"`
}

// TrendsStart is the first day of the month that lies months before now.
func TrendsStart(now time.Time, months int) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()-time.Month(months), 1, 0, 0, 0, 0, time.UTC)
}

// MonthlyTrends buckets transactions by UTC calendar month, oldest first.
// Months without transactions are left out.
func MonthlyTrends(txs []models.Transaction, months int) Trends {
	byMonth := map[string]*MonthTrend{}
	for _, t := range txs {
		key := t.Date.UTC().Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &MonthTrend{Month: key, Income: decimal.Zero, Expenses: decimal.Zero}
			byMonth[key] = m
		}
		if t.Type == models.TransactionIncome {
			m.Income = m.Income.Add(t.Amount)
		} else {
			m.Expenses = m.Expenses.Add(t.Amount)
		}
	}

	data := make([]MonthTrend, 0, len(byMonth))
	for _, m := range byMonth {
		m.Income = m.Income.Round(2)
		m.Expenses = m.Expenses.Round(2)
		m.Balance = m.Income.Sub(m.Expenses)
		data = append(data, *m)
	}
	sort.Slice(data, func(i, j int) bool { return data[i].Month < data[j].Month })
	return Trends{Period: fmt.Sprintf("%d months", months), Data: data}
}
