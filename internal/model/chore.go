package model

import "time"

type Chore struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Priority    int       `json:"priority"`
	Done        bool      `json:"done"`
	DoneBy      *int64    `json:"done_by"`
	CreatedBy   *int64    `json:"created_by"`
	ParentID    *int64    `json:"parent_id"`
	Cycle       int       `json:"cycle"`
	RepeatCount int       `json:"repeat_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
