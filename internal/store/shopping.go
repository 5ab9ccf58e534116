package store

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jgrady/homekeep/internal/model"
)

type ShoppingStore struct {
	db *sql.DB
}

func NewShoppingStore(db *sql.DB) *ShoppingStore {
	return &ShoppingStore{db: db}
}

func scanShoppingItem(scanner interface{ Scan(...any) error }) (*model.ShoppingItem, error) {
	var it model.ShoppingItem
	var cost string
	var createdBy, boughtBy sql.NullInt64

	err := scanner.Scan(
		&it.ID, &it.HouseholdID, &it.Name, &cost,
		&createdBy, &boughtBy, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	it.Cost, err = decimal.NewFromString(cost)
	if err != nil {
		return nil, fmt.Errorf("parse cost %q: %w", cost, err)
	}
	if createdBy.Valid {
		it.CreatedBy = &createdBy.Int64
	}
	if boughtBy.Valid {
		it.BoughtBy = &boughtBy.Int64
	}
	return &it, nil
}

const shoppingCols = `id, household_id, name, cost, created_by, bought_by, created_at, updated_at`

func (s *ShoppingStore) Create(it model.ShoppingItem) (*model.ShoppingItem, error) {
	var createdBy sql.NullInt64
	if it.CreatedBy != nil {
		createdBy = sql.NullInt64{Int64: *it.CreatedBy, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO shopping_items (household_id, name, cost, created_by) VALUES (?, ?, ?, ?)`,
		it.HouseholdID, it.Name, it.Cost.String(), createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert shopping item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ShoppingStore) GetByID(id int64) (*model.ShoppingItem, error) {
	row := s.db.QueryRow(`SELECT `+shoppingCols+` FROM shopping_items WHERE id = ?`, id)
	it, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping item: %w", err)
	}
	return it, nil
}

func (s *ShoppingStore) List(householdID int64, skip, limit int) ([]model.ShoppingItem, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT `+shoppingCols+` FROM shopping_items WHERE household_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		householdID, limit, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	defer rows.Close()

	var items []model.ShoppingItem
	for rows.Next() {
		it, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// ListUnbought returns the most recently added unbought items. Shopping
// items carry no due date, so there is no window to filter by.
func (s *ShoppingStore) ListUnbought(householdID int64, limit int) ([]model.ShoppingItem, error) {
	rows, err := s.db.Query(
		`SELECT `+shoppingCols+` FROM shopping_items
		 WHERE household_id = ? AND bought_by IS NULL
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		householdID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list unbought items: %w", err)
	}
	defer rows.Close()

	var items []model.ShoppingItem
	for rows.Next() {
		it, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (s *ShoppingStore) Update(it model.ShoppingItem) (*model.ShoppingItem, error) {
	_, err := s.db.Exec(
		`UPDATE shopping_items SET name = ?, cost = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		it.Name, it.Cost.String(), it.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update shopping item: %w", err)
	}
	return s.GetByID(it.ID)
}

// SetBought marks the item bought by the given user, or puts it back on the
// list when boughtBy is nil.
func (s *ShoppingStore) SetBought(id int64, boughtBy *int64) (*model.ShoppingItem, error) {
	var by sql.NullInt64
	if boughtBy != nil {
		by = sql.NullInt64{Int64: *boughtBy, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE shopping_items SET bought_by = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		by, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set shopping item bought: %w", err)
	}
	return s.GetByID(id)
}

func (s *ShoppingStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping item: %w", err)
	}
	return nil
}
