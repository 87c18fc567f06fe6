package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

func init() {
	// API clients chart these values; send numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Transaction struct {
	Base
	UserID      string          `gorm:"index:idx_tx_user_date,priority:1;type:varchar(36);not null" json:"userId"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Type        string          `gorm:"type:varchar(10);not null" json:"type"`
	Category    string          `gorm:"not null" json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `gorm:"index:idx_tx_user_date,priority:2;not null" json:"date"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
