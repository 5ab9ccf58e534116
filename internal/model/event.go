package model

import "time"

type Event struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	CreatedBy   *int64    `json:"created_by"`
	ParentID    *int64    `json:"parent_id"`
	Cycle       int       `json:"cycle"`
	RepeatCount int       `json:"repeat_count"`
	AttendeeIDs []int64   `json:"attendee_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
