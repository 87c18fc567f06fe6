package transactions

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fintrek-backend/controllers/authentication"
	"fintrek-backend/controllers/respond"
	"fintrek-backend/models"
)

var (
	minAmount = decimal.RequireFromString("0.01")
	maxAmount = decimal.RequireFromString("1000000000000")
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

type transactionRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Type        *string          `json:"type"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Date        *string          `json:"date"`
}

// parseDate accepts RFC 3339 timestamps and plain calendar dates.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// apply validates the request onto tx. With partial set, missing fields are
// left untouched; otherwise amount, type and category are required.
func (req transactionRequest) apply(tx *models.Transaction, partial bool, now time.Time) []respond.FieldError {
	var v respond.Validator

	switch {
	case req.Amount != nil:
		v.Check(req.Amount.GreaterThanOrEqual(minAmount) && req.Amount.LessThan(maxAmount), "amount", "must be a positive number of at least 0.01")
		tx.Amount = req.Amount.Round(2)
	case !partial:
		v.Add("amount", "is required")
	}

	switch {
	case req.Type != nil:
		kind := strings.ToLower(strings.TrimSpace(*req.Type))
		v.Check(kind == models.TransactionIncome || kind == models.TransactionExpense, "type", "must be income or expense")
		tx.Type = kind
	case !partial:
		v.Add("type", "is required")
	}

	switch {
	case req.Category != nil:
		category := strings.TrimSpace(*req.Category)
		v.Check(category != "", "category", "is required")
		tx.Category = category
	case !partial:
		v.Add("category", "is required")
	}

	if req.Description != nil {
		tx.Description = strings.TrimSpace(*req.Description)
	}

	switch {
	case req.Date != nil && strings.TrimSpace(*req.Date) != "":
		date, ok := parseDate(*req.Date)
		v.Check(ok, "date", "must be an ISO 8601 date")
		tx.Date = date
	case !partial:
		tx.Date = now
	}

	return v.Errors()
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx := models.Transaction{UserID: authentication.UserID(r.Context())}
	if errs := req.apply(&tx, false, h.now()); len(errs) > 0 {
		respond.ValidationFailed(w, errs)
		return
	}

	if err := h.DB.WithContext(r.Context()).Create(&tx).Error; err != nil {
		log.Printf("Add transaction error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to add transaction")
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{
		"message":     "Transaction added successfully",
		"transaction": tx,
	})
}

// ListTransactions pages through the caller's transactions, newest first.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := authentication.UserID(ctx)
	query := r.URL.Query()

	var v respond.Validator
	limit := v.IntQuery(r, "limit", 50, 1, 200)
	kind := strings.ToLower(strings.TrimSpace(query.Get("type")))
	if kind != "" {
		v.Check(kind == models.TransactionIncome || kind == models.TransactionExpense, "type", "must be income or expense")
	}
	if !v.Valid() {
		respond.ValidationFailed(w, v.Errors())
		return
	}

	q := h.DB.WithContext(ctx).Where("user_id = ?", userID)
	if kind != "" {
		q = q.Where("type = ?", kind)
	}
	if category := strings.TrimSpace(query.Get("category")); category != "" {
		q = q.Where("category = ?", category)
	}
	if after := strings.TrimSpace(query.Get("startAfter")); after != "" {
		var cursor models.Transaction
		err := h.DB.WithContext(ctx).Where("id = ? AND user_id = ?", after, userID).First(&cursor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.ValidationFailed(w, []respond.FieldError{{Field: "startAfter", Message: "unknown transaction"}})
			return
		}
		if err != nil {
			log.Printf("Get transactions error: cursor: %v", err)
			respond.Error(w, http.StatusInternalServerError, "Failed to fetch transactions")
			return
		}
		q = q.Where("date < ? OR (date = ? AND id < ?)", cursor.Date, cursor.Date, cursor.ID)
	}

	txs := []models.Transaction{}
	if err := q.Order("date DESC").Order("id DESC").Limit(limit).Find(&txs).Error; err != nil {
		log.Printf("Get transactions error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"transactions": txs,
		"count":        len(txs),
	})
}

// owned loads a transaction by path id, answering 404 or 403 itself.
func (h *Handler) owned(w http.ResponseWriter, r *http.Request, action string) (models.Transaction, bool) {
	var tx models.Transaction
	err := h.DB.WithContext(r.Context()).First(&tx, "id = ?", r.PathValue("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respond.Error(w, http.StatusNotFound, "Transaction not found")
		return tx, false
	}
	if err != nil {
		log.Printf("%s transaction error: %v", action, err)
		respond.Error(w, http.StatusInternalServerError, "Failed to "+strings.ToLower(action)+" transaction")
		return tx, false
	}
	if tx.UserID != authentication.UserID(r.Context()) {
		respond.Error(w, http.StatusForbidden, "Unauthorized access")
		return tx, false
	}
	return tx, true
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.owned(w, r, "Fetch")
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"transaction": tx})
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tx, ok := h.owned(w, r, "Update")
	if !ok {
		return
	}
	if errs := req.apply(&tx, true, h.now()); len(errs) > 0 {
		respond.ValidationFailed(w, errs)
		return
	}

	err := h.DB.WithContext(r.Context()).Model(&tx).Select("amount", "type", "category", "description", "date").Updates(&tx).Error
	if err != nil {
		log.Printf("Update transaction error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":     "Transaction updated successfully",
		"transaction": tx,
	})
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.owned(w, r, "Delete")
	if !ok {
		return
	}
	if err := h.DB.WithContext(r.Context()).Delete(&tx).Error; err != nil {
		log.Printf("Delete transaction error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}
	respond.Message(w, http.StatusOK, "Transaction deleted successfully")
}
