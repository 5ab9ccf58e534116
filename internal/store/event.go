package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jgrady/homekeep/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func scanEvent(scanner interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	var createdBy, parentID sql.NullInt64

	err := scanner.Scan(
		&e.ID, &e.HouseholdID, &e.Name, &e.Description, &e.DueDate,
		&createdBy, &parentID, &e.Cycle, &e.RepeatCount, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if createdBy.Valid {
		e.CreatedBy = &createdBy.Int64
	}
	if parentID.Valid {
		e.ParentID = &parentID.Int64
	}
	return &e, nil
}

const eventCols = `id, household_id, name, description, due_date, created_by, parent_id, cycle, repeat_count, created_at, updated_at`

func insertEvent(tx *sql.Tx, e model.Event) (int64, error) {
	var createdBy, parentID sql.NullInt64
	if e.CreatedBy != nil {
		createdBy = sql.NullInt64{Int64: *e.CreatedBy, Valid: true}
	}
	if e.ParentID != nil {
		parentID = sql.NullInt64{Int64: *e.ParentID, Valid: true}
	}

	result, err := tx.Exec(
		`INSERT INTO events (household_id, name, description, due_date, created_by, parent_id, cycle, repeat_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.HouseholdID, e.Name, e.Description, e.DueDate.UTC(),
		createdBy, parentID, e.Cycle, e.RepeatCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return result.LastInsertId()
}

func insertAttendees(tx *sql.Tx, eventID int64, userIDs []int64) error {
	for _, uid := range userIDs {
		if _, err := tx.Exec(
			`INSERT INTO event_attendees (event_id, user_id) VALUES (?, ?)`,
			eventID, uid,
		); err != nil {
			return fmt.Errorf("insert attendee: %w", err)
		}
	}
	return nil
}

// Create inserts the event, its attendee rows, and one child occurrence
// per date in childDates, each with its own copy of the
// attendee set. Everything happens in a single transaction: a failed child
// or attendee insert rolls the whole create back.
func (s *EventStore) Create(e model.Event, childDates []time.Time) (*model.Event, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	parentID, err := insertEvent(tx, e)
	if err != nil {
		return nil, err
	}
	if err := insertAttendees(tx, parentID, e.AttendeeIDs); err != nil {
		return nil, err
	}

	for _, due := range childDates {
		child := e
		child.DueDate = due
		child.RepeatCount = 0
		child.ParentID = &parentID

		childID, err := insertEvent(tx, child)
		if err != nil {
			return nil, fmt.Errorf("insert child event: %w", err)
		}
		if err := insertAttendees(tx, childID, e.AttendeeIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(parentID)
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := s.loadAttendees(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EventStore) loadAttendees(e *model.Event) error {
	rows, err := s.db.Query(
		`SELECT user_id FROM event_attendees WHERE event_id = ? ORDER BY user_id ASC`,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("load attendees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var uid int64
		if err := rows.Scan(&uid); err != nil {
			return fmt.Errorf("scan attendee: %w", err)
		}
		e.AttendeeIDs = append(e.AttendeeIDs, uid)
	}
	return rows.Err()
}

func (s *EventStore) List(householdID int64, skip, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT `+eventCols+` FROM events WHERE household_id = ?
		 ORDER BY due_date ASC LIMIT ? OFFSET ?`,
		householdID, limit, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	return s.collectEvents(rows)
}

// ListUpcoming returns events due within [start, end), soonest first.
func (s *EventStore) ListUpcoming(householdID int64, start, end time.Time, limit int) ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT `+eventCols+` FROM events
		 WHERE household_id = ? AND due_date >= ? AND due_date < ?
		 ORDER BY due_date ASC LIMIT ?`,
		householdID, start.UTC(), end.UTC(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	defer rows.Close()

	return s.collectEvents(rows)
}

func (s *EventStore) collectEvents(rows *sql.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range events {
		if err := s.loadAttendees(&events[i]); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// Update rewrites the event's editable fields and replaces its attendee set.
func (s *EventStore) Update(e model.Event) (*model.Event, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE events SET name = ?, description = ?, due_date = ?, cycle = ?, repeat_count = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		e.Name, e.Description, e.DueDate.UTC(), e.Cycle, e.RepeatCount, e.ID,
	); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM event_attendees WHERE event_id = ?`, e.ID); err != nil {
		return nil, fmt.Errorf("clear attendees: %w", err)
	}
	if err := insertAttendees(tx, e.ID, e.AttendeeIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(e.ID)
}

func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *EventStore) CountChildren(parentID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM events WHERE parent_id = ?`, parentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return n, nil
}

func (s *EventStore) ListChildren(parentID int64) ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT `+eventCols+` FROM events WHERE parent_id = ? ORDER BY due_date ASC`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	return s.collectEvents(rows)
}
