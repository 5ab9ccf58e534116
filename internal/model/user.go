package model

import "time"

type User struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	HouseholdID      *int64    `json:"household_id"`
	ProfilePictureID *int64    `json:"profile_picture_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProfilePicture id 0 is reserved for the built-in default avatar and is
// never stored as a row.
type ProfilePicture struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Category string `json:"category,omitempty"`
}
