package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShoppingItem struct {
	ID          int64           `json:"id"`
	HouseholdID int64           `json:"household_id"`
	Name        string          `json:"name"`
	Cost        decimal.Decimal `json:"cost"`
	CreatedBy   *int64          `json:"created_by"`
	BoughtBy    *int64          `json:"bought_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
