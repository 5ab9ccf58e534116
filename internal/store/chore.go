package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jgrady/homekeep/internal/model"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	var doneInt int
	var doneBy, createdBy, parentID sql.NullInt64

	err := scanner.Scan(
		&c.ID, &c.HouseholdID, &c.Name, &c.Description, &c.DueDate,
		&c.Priority, &doneInt, &doneBy, &createdBy, &parentID,
		&c.Cycle, &c.RepeatCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Done = doneInt != 0
	if doneBy.Valid {
		c.DoneBy = &doneBy.Int64
	}
	if createdBy.Valid {
		c.CreatedBy = &createdBy.Int64
	}
	if parentID.Valid {
		c.ParentID = &parentID.Int64
	}
	return &c, nil
}

const choreCols = `id, household_id, name, description, due_date, priority, done, done_by, created_by, parent_id, cycle, repeat_count, created_at, updated_at`

func insertChore(tx *sql.Tx, c model.Chore) (int64, error) {
	var createdBy, parentID sql.NullInt64
	if c.CreatedBy != nil {
		createdBy = sql.NullInt64{Int64: *c.CreatedBy, Valid: true}
	}
	if c.ParentID != nil {
		parentID = sql.NullInt64{Int64: *c.ParentID, Valid: true}
	}

	result, err := tx.Exec(
		`INSERT INTO chores (household_id, name, description, due_date, priority, created_by, parent_id, cycle, repeat_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.HouseholdID, c.Name, c.Description, c.DueDate.UTC(), c.Priority,
		createdBy, parentID, c.Cycle, c.RepeatCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert chore: %w", err)
	}
	return result.LastInsertId()
}

// Create inserts the chore and, when childDates is non-empty, one child
// occurrence per date in the same transaction. Children copy the parent's
// fields except due date, repeat count (forced to 0) and parent reference.
func (s *ChoreStore) Create(c model.Chore, childDates []time.Time) (*model.Chore, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	parentID, err := insertChore(tx, c)
	if err != nil {
		return nil, err
	}

	for _, due := range childDates {
		child := c
		child.DueDate = due
		child.RepeatCount = 0
		child.ParentID = &parentID
		if _, err := insertChore(tx, child); err != nil {
			return nil, fmt.Errorf("insert child chore: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(parentID)
}

func (s *ChoreStore) GetByID(id int64) (*model.Chore, error) {
	row := s.db.QueryRow(`SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

// List returns the household's chores, most important first (lower priority
// value sorts first), with due date as the tie-break.
func (s *ChoreStore) List(householdID int64, skip, limit int) ([]model.Chore, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	rows, err := s.db.Query(
		`SELECT `+choreCols+` FROM chores WHERE household_id = ?
		 ORDER BY priority ASC, due_date ASC LIMIT ? OFFSET ?`,
		householdID, limit, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

// ListUpcoming returns undone chores due within [start, end), soonest first,
// priority ascending on equal due dates.
func (s *ChoreStore) ListUpcoming(householdID int64, start, end time.Time, limit int) ([]model.Chore, error) {
	rows, err := s.db.Query(
		`SELECT `+choreCols+` FROM chores
		 WHERE household_id = ? AND done = 0 AND due_date >= ? AND due_date < ?
		 ORDER BY due_date ASC, priority ASC LIMIT ?`,
		householdID, start.UTC(), end.UTC(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list upcoming chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

func (s *ChoreStore) Update(c model.Chore) (*model.Chore, error) {
	_, err := s.db.Exec(
		`UPDATE chores SET name = ?, description = ?, due_date = ?, priority = ?, cycle = ?, repeat_count = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		c.Name, c.Description, c.DueDate.UTC(), c.Priority, c.Cycle, c.RepeatCount, c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	return s.GetByID(c.ID)
}

// SetDone toggles the done flag. doneBy is the completing user when done is
// true and nil when the completion is undone.
func (s *ChoreStore) SetDone(id int64, done bool, doneBy *int64) (*model.Chore, error) {
	var doneInt int
	var by sql.NullInt64
	if done {
		doneInt = 1
	}
	if doneBy != nil {
		by = sql.NullInt64{Int64: *doneBy, Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE chores SET done = ?, done_by = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		doneInt, by, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set chore done: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChoreStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM chores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return nil
}

// CountChildren returns how many occurrences reference the given parent.
func (s *ChoreStore) CountChildren(parentID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM chores WHERE parent_id = ?`, parentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return n, nil
}

// ListChildren returns the child occurrences of a parent, due date ascending.
func (s *ChoreStore) ListChildren(parentID int64) ([]model.Chore, error) {
	rows, err := s.db.Query(
		`SELECT `+choreCols+` FROM chores WHERE parent_id = ? ORDER BY due_date ASC`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}
