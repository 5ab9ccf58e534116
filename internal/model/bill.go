package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts serialize as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Bill struct {
	ID          int64           `json:"id"`
	HouseholdID int64           `json:"household_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	Cycle       int             `json:"cycle"`
	CreatedBy   *int64          `json:"created_by"`
	PaidBy      *int64          `json:"paid_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
