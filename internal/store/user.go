package store

import (
	"database/sql"
	"fmt"

	"github.com/jgrady/homekeep/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var householdID, pictureID sql.NullInt64

	err := scanner.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&householdID, &pictureID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if householdID.Valid {
		u.HouseholdID = &householdID.Int64
	}
	if pictureID.Valid {
		u.ProfilePictureID = &pictureID.Int64
	}
	return &u, nil
}

const userCols = `id, username, email, password_hash, household_id, profile_picture_id, created_at, updated_at`

func (s *UserStore) Create(username, email, passwordHash string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`,
		username, email, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByLogin looks a user up by username or email.
func (s *UserStore) GetByLogin(login string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE username = ? OR email = ?`, login, login)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by login: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByUsername(username string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) ListByHousehold(householdID int64) ([]model.User, error) {
	rows, err := s.db.Query(
		`SELECT `+userCols+` FROM users WHERE household_id = ? ORDER BY username ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list users by household: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) UpdateProfile(id int64, username, email string) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET username = ?, email = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		username, email, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) UpdatePassword(id int64, passwordHash string) error {
	_, err := s.db.Exec(
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// SetHousehold updates the user's household reference. Pass nil to detach.
func (s *UserStore) SetHousehold(id int64, householdID *int64) error {
	var hid sql.NullInt64
	if householdID != nil {
		hid = sql.NullInt64{Int64: *householdID, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE users SET household_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		hid, id,
	)
	if err != nil {
		return fmt.Errorf("set household: %w", err)
	}
	return nil
}

// SetProfilePicture updates the user's avatar. Pass nil to reset to the
// default (id 0 on the wire).
func (s *UserStore) SetProfilePicture(id int64, pictureID *int64) error {
	var pid sql.NullInt64
	if pictureID != nil {
		pid = sql.NullInt64{Int64: *pictureID, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE users SET profile_picture_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		pid, id,
	)
	if err != nil {
		return fmt.Errorf("set profile picture: %w", err)
	}
	return nil
}

func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
