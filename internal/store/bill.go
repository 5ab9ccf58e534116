package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jgrady/homekeep/internal/model"
)

type BillStore struct {
	db *sql.DB
}

func NewBillStore(db *sql.DB) *BillStore {
	return &BillStore{db: db}
}

func scanBill(scanner interface{ Scan(...any) error }) (*model.Bill, error) {
	var b model.Bill
	var amount string
	var createdBy, paidBy sql.NullInt64

	err := scanner.Scan(
		&b.ID, &b.HouseholdID, &b.Name, &b.Description, &amount,
		&b.DueDate, &b.Cycle, &createdBy, &paidBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if createdBy.Valid {
		b.CreatedBy = &createdBy.Int64
	}
	if paidBy.Valid {
		b.PaidBy = &paidBy.Int64
	}
	return &b, nil
}

const billCols = `id, household_id, name, description, amount, due_date, cycle, created_by, paid_by, created_at, updated_at`

func (s *BillStore) Create(b model.Bill) (*model.Bill, error) {
	var createdBy sql.NullInt64
	if b.CreatedBy != nil {
		createdBy = sql.NullInt64{Int64: *b.CreatedBy, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO bills (household_id, name, description, amount, due_date, cycle, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.HouseholdID, b.Name, b.Description, b.Amount.String(), b.DueDate.UTC(), b.Cycle, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert bill: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *BillStore) GetByID(id int64) (*model.Bill, error) {
	row := s.db.QueryRow(`SELECT `+billCols+` FROM bills WHERE id = ?`, id)
	b, err := scanBill(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bill: %w", err)
	}
	return b, nil
}

func (s *BillStore) List(householdID int64, skip, limit int) ([]model.Bill, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT `+billCols+` FROM bills WHERE household_id = ?
		 ORDER BY due_date ASC LIMIT ? OFFSET ?`,
		householdID, limit, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []model.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, *b)
	}
	return bills, rows.Err()
}

// ListUnpaid returns unpaid bills due within [start, end), soonest first.
func (s *BillStore) ListUnpaid(householdID int64, start, end time.Time, limit int) ([]model.Bill, error) {
	rows, err := s.db.Query(
		`SELECT `+billCols+` FROM bills
		 WHERE household_id = ? AND paid_by IS NULL AND due_date >= ? AND due_date < ?
		 ORDER BY due_date ASC LIMIT ?`,
		householdID, start.UTC(), end.UTC(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list unpaid bills: %w", err)
	}
	defer rows.Close()

	var bills []model.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, *b)
	}
	return bills, rows.Err()
}

func (s *BillStore) Update(b model.Bill) (*model.Bill, error) {
	_, err := s.db.Exec(
		`UPDATE bills SET name = ?, description = ?, amount = ?, due_date = ?, cycle = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		b.Name, b.Description, b.Amount.String(), b.DueDate.UTC(), b.Cycle, b.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update bill: %w", err)
	}
	return s.GetByID(b.ID)
}

// SetPaid marks the bill paid by the given user, or unpaid when paidBy is nil.
func (s *BillStore) SetPaid(id int64, paidBy *int64) (*model.Bill, error) {
	var by sql.NullInt64
	if paidBy != nil {
		by = sql.NullInt64{Int64: *paidBy, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE bills SET paid_by = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		by, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set bill paid: %w", err)
	}
	return s.GetByID(id)
}

func (s *BillStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	return nil
}
