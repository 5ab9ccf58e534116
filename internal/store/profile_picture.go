package store

import (
	"database/sql"
	"fmt"

	"github.com/jgrady/homekeep/internal/model"
)

type ProfilePictureStore struct {
	db *sql.DB
}

func NewProfilePictureStore(db *sql.DB) *ProfilePictureStore {
	return &ProfilePictureStore{db: db}
}

func scanProfilePicture(scanner interface{ Scan(...any) error }) (*model.ProfilePicture, error) {
	var p model.ProfilePicture
	err := scanner.Scan(&p.ID, &p.Name, &p.ImageURL, &p.Category)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const profilePictureCols = `id, name, image_url, category`

func (s *ProfilePictureStore) GetByID(id int64) (*model.ProfilePicture, error) {
	row := s.db.QueryRow(`SELECT `+profilePictureCols+` FROM profile_pictures WHERE id = ?`, id)
	p, err := scanProfilePicture(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile picture: %w", err)
	}
	return p, nil
}

// List returns all profile pictures, optionally filtered by category.
func (s *ProfilePictureStore) List(category string) ([]model.ProfilePicture, error) {
	query := `SELECT ` + profilePictureCols + ` FROM profile_pictures ORDER BY category ASC, name ASC`
	args := []any{}
	if category != "" {
		query = `SELECT ` + profilePictureCols + ` FROM profile_pictures WHERE category = ? ORDER BY name ASC`
		args = append(args, category)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list profile pictures: %w", err)
	}
	defer rows.Close()

	var pictures []model.ProfilePicture
	for rows.Next() {
		p, err := scanProfilePicture(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile picture: %w", err)
		}
		pictures = append(pictures, *p)
	}
	return pictures, rows.Err()
}
