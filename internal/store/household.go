package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/jgrady/homekeep/internal/model"
)

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	err := scanner.Scan(&h.ID, &h.Name, &h.JoinCode, &h.OwnerID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

const householdCols = `id, name, join_code, owner_id, created_at, updated_at`

const joinCodeLength = 8

// No 0/O or 1/I since join codes get read aloud and typed on phones.
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateJoinCode() (string, error) {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}

// Create inserts a household with a freshly generated join code and attaches
// the owner to it, in one transaction. A join-code collision retries with a
// new code; an owner_id collision (the caller already owns a household) does
// not and surfaces as a unique violation to the handler.
func (s *HouseholdStore) Create(name string, ownerID int64) (*model.Household, error) {
	var id int64

	backoff := retry.WithMaxRetries(5, retry.NewConstant(time.Millisecond))
	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		code, err := generateJoinCode()
		if err != nil {
			return err
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback()

		result, err := tx.Exec(
			`INSERT INTO households (name, join_code, owner_id) VALUES (?, ?, ?)`,
			name, code, ownerID,
		)
		if err != nil {
			if IsUniqueViolation(err) && !isOwnerViolation(err) {
				return retry.RetryableError(fmt.Errorf("join code collision: %w", err))
			}
			return fmt.Errorf("insert household: %w", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}

		if _, err := tx.Exec(
			`UPDATE users SET household_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			id, ownerID,
		); err != nil {
			return fmt.Errorf("attach owner: %w", err)
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(id)
}

// The driver names the failed constraint's column in the error message.
func isOwnerViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "households.owner_id")
}

func (s *HouseholdStore) GetByID(id int64) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) GetByJoinCode(code string) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE join_code = ?`, code)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household by join code: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) GetByOwner(ownerID int64) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE owner_id = ?`, ownerID)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household by owner: %w", err)
	}
	return h, nil
}

// Delete removes the household. Foreign keys cascade: owned resource rows
// are deleted and members' household reference is nulled.
func (s *HouseholdStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM households WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete household: %w", err)
	}
	return nil
}
