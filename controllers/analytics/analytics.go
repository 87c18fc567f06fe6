package analytics

import (
	"log"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"fintrek-backend/controllers/authentication"
	"fintrek-backend/controllers/respond"
	"fintrek-backend/models"
	"fintrek-backend/services"
)

type Handler struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *Handler) since(r *http.Request, start time.Time) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := h.DB.WithContext(r.Context()).
		Where("user_id = ? AND date >= ?", authentication.UserID(r.Context()), start).
		Order("date").
		Find(&txs).Error
	return txs, err
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	var v respond.Validator
	days := v.IntQuery(r, "period", 30, 1, 3650)
	if !v.Valid() {
		respond.ValidationFailed(w, v.Errors())
		return
	}

	txs, err := h.since(r, h.now().AddDate(0, 0, -days))
	if err != nil {
		log.Printf("Summary analytics error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch summary analytics")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"summary": services.Summarize(txs, days)})
}

func (h *Handler) Category(w http.ResponseWriter, r *http.Request) {
	var v respond.Validator
	days := v.IntQuery(r, "period", 30, 1, 3650)
	kind := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type")))
	if kind == "" {
		kind = models.TransactionExpense
	}
	v.Check(kind == models.TransactionIncome || kind == models.TransactionExpense, "type", "must be income or expense")
	if !v.Valid() {
		respond.ValidationFailed(w, v.Errors())
		return
	}

	txs, err := h.since(r, h.now().AddDate(0, 0, -days))
	if err != nil {
		log.Printf("Category analytics error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch category analytics")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"breakdown": services.BreakdownByCategory(txs, kind, days)})
}

func (h *Handler) Trends(w http.ResponseWriter, r *http.Request) {
	var v respond.Validator
	months := v.IntQuery(r, "months", 6, 1, 60)
	if !v.Valid() {
		respond.ValidationFailed(w, v.Errors())
		return
	}

	txs, err := h.since(r, services.TrendsStart(h.now(), months))
	if err != nil {
		log.Printf("Trends analytics error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch trend analytics")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"trends": services.MonthlyTrends(txs, months)})
}
