package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus/internal/params"
	"campus/internal/scoring"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// College is an institution students browse, review and apply to. The rating
// summary fields are denormalized from active reviews and written only by
// RatingsStore.Recompute.
type College struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	Type            string    `json:"type"` // public | private
	Website         *string   `json:"website,omitempty"`
	Description     *string   `json:"description,omitempty"`
	EstablishedYear *int      `json:"established_year,omitempty"`
	ImageURLs       []string  `json:"image_urls,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	AverageRating float64           `json:"average_rating"`
	TotalReviews  int               `json:"total_reviews"`
	Breakdown     scoring.Breakdown `json:"rating_breakdown"`
}

// CollegeFilter is the parsed query surface of the public college listing.
type CollegeFilter struct {
	Search     string // matches name or city, case-insensitive
	Type       string // "" when not filtered
	MinRating  *float64
	Sort       string // rating | reviews | name
	Pagination params.Pagination
}

type CollegesStore struct {
	db *pgxpool.Pool
}

const collegeColumns = `
	c.id, c.name, c.city, c.state, c.type, c.website, c.description,
	c.established_year, c.image_urls, c.created_at, c.updated_at,
	c.average_rating, c.total_reviews,
	c.rating_academics, c.rating_campus_life, c.rating_facilities,
	c.rating_location, c.rating_value`

func scanCollege(row pgx.Row, c *College) error {
	return row.Scan(
		&c.ID, &c.Name, &c.City, &c.State, &c.Type, &c.Website, &c.Description,
		&c.EstablishedYear, &c.ImageURLs, &c.CreatedAt, &c.UpdatedAt,
		&c.AverageRating, &c.TotalReviews,
		&c.Breakdown.Academics, &c.Breakdown.CampusLife, &c.Breakdown.Facilities,
		&c.Breakdown.Location, &c.Breakdown.Value,
	)
}

func (s *CollegesStore) Create(ctx context.Context, college *College) error {
	exists, err := s.existsByName(ctx, college.Name)
	if err != nil {
		return fmt.Errorf("error checking if college exists: %w", err)
	}
	if exists {
		return ErrConflict
	}

	query := `
		INSERT INTO colleges (name, city, state, type, website, description, established_year, image_urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query,
		college.Name,
		college.City,
		college.State,
		college.Type,
		college.Website,
		college.Description,
		college.EstablishedYear,
		college.ImageURLs,
	).Scan(&college.ID, &college.CreatedAt, &college.UpdatedAt)
}

func (s *CollegesStore) existsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM colleges WHERE LOWER(name) = LOWER($1))`
	err := s.db.QueryRow(ctx, query, name).Scan(&exists)
	return exists, err
}

func (s *CollegesStore) GetByID(ctx context.Context, collegeID int64) (*College, error) {
	query := `SELECT` + collegeColumns + `
		FROM colleges c
		WHERE c.id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	college := &College{}
	if err := scanCollege(s.db.QueryRow(ctx, query, collegeID), college); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return college, nil
}

func (s *CollegesStore) Exists(ctx context.Context, collegeID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM colleges WHERE id = $1)`
	err := s.db.QueryRow(ctx, query, collegeID).Scan(&exists)
	return exists, err
}

// List returns a filtered, sorted page of colleges plus the total match count.
func (s *CollegesStore) List(ctx context.Context, filter CollegeFilter) ([]College, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	where := []string{"1=1"}
	args := []any{}
	argCounter := 1

	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(c.name ILIKE $%d OR c.city ILIKE $%d)", argCounter, argCounter))
		args = append(args, "%"+filter.Search+"%")
		argCounter++
	}
	if filter.Type != "" {
		where = append(where, fmt.Sprintf("c.type = $%d", argCounter))
		args = append(args, filter.Type)
		argCounter++
	}
	if filter.MinRating != nil {
		where = append(where, fmt.Sprintf("c.average_rating >= $%d", argCounter))
		args = append(args, *filter.MinRating)
		argCounter++
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM colleges c WHERE ` + whereClause
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	var orderClause string
	switch filter.Sort {
	case "reviews":
		orderClause = "c.total_reviews DESC, c.name ASC"
	case "name":
		orderClause = "c.name ASC"
	default:
		orderClause = "c.average_rating DESC, c.total_reviews DESC"
	}

	query := fmt.Sprintf(`SELECT%s
		FROM colleges c
		WHERE %s
		ORDER BY %s
		OFFSET $%d LIMIT $%d`,
		collegeColumns, whereClause, orderClause, argCounter, argCounter+1)
	args = append(args, filter.Pagination.Offset, filter.Pagination.Limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var colleges []College
	for rows.Next() {
		var c College
		if err := scanCollege(rows, &c); err != nil {
			return nil, 0, err
		}
		colleges = append(colleges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return colleges, total, nil
}

// Update applies a whitelisted partial update. The rating summary columns are
// deliberately not reachable from here.
func (s *CollegesStore) Update(ctx context.Context, collegeID int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return fmt.Errorf("no fields to update")
	}

	setClauses := []string{}
	args := []any{}
	argCounter := 1

	for field, value := range updates {
		if !isValidCollegeField(field) {
			return fmt.Errorf("invalid field name: %s", field)
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field, argCounter))
		args = append(args, value)
		argCounter++
	}
	args = append(args, collegeID)

	query := fmt.Sprintf("UPDATE colleges SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(setClauses, ", "), argCounter)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	result, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update college: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isValidCollegeField(field string) bool {
	validFields := map[string]bool{
		"name":             true,
		"city":             true,
		"state":            true,
		"type":             true,
		"website":          true,
		"description":      true,
		"established_year": true,
	}
	return validFields[field]
}

func (s *CollegesStore) Delete(ctx context.Context, collegeID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return withTx(s.db, ctx, func(tx pgx.Tx) error {
		// reviews and applications go with the college
		if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE college_id = $1`, collegeID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM applications WHERE college_id = $1`, collegeID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM saved_colleges WHERE college_id = $1`, collegeID); err != nil {
			return err
		}

		result, err := tx.Exec(ctx, `DELETE FROM colleges WHERE id = $1`, collegeID)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *CollegesStore) AddPhotoURL(ctx context.Context, collegeID int64, photoURL string) error {
	query := `
		UPDATE colleges
		SET image_urls = array_append(image_urls, $1)
		WHERE id = $2
	`
	_, err := s.db.Exec(ctx, query, photoURL, collegeID)
	if err != nil {
		return fmt.Errorf("failed to add photo URL: %w", err)
	}
	return nil
}

func (s *CollegesStore) RemovePhotoURL(ctx context.Context, collegeID int64, photoURL string) error {
	query := `
		UPDATE colleges
		SET image_urls = array_remove(image_urls, $1)
		WHERE id = $2
	`
	_, err := s.db.Exec(ctx, query, photoURL, collegeID)
	if err != nil {
		return fmt.Errorf("failed to remove photo URL: %w", err)
	}
	return nil
}

// Save bookmarks a college for a user. Saving twice is a no-op.
func (s *CollegesStore) Save(ctx context.Context, userID, collegeID int64) error {
	query := `
		INSERT INTO saved_colleges (user_id, college_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := s.db.Exec(ctx, query, userID, collegeID)
	if err != nil {
		return fmt.Errorf("failed to save college: %w", err)
	}
	return nil
}

func (s *CollegesStore) Unsave(ctx context.Context, userID, collegeID int64) error {
	query := `
		DELETE FROM saved_colleges
		WHERE user_id = $1 AND college_id = $2
	`
	_, err := s.db.Exec(ctx, query, userID, collegeID)
	if err != nil {
		return fmt.Errorf("failed to unsave college: %w", err)
	}
	return nil
}

func (s *CollegesStore) GetSavedByUser(ctx context.Context, userID int64) ([]College, error) {
	query := `SELECT` + collegeColumns + `
		FROM colleges c
		JOIN saved_colleges sc ON c.id = sc.college_id
		WHERE sc.user_id = $1
		ORDER BY sc.created_at DESC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get saved colleges: %w", err)
	}
	defer rows.Close()

	var colleges []College
	for rows.Next() {
		var c College
		if err := scanCollege(rows, &c); err != nil {
			return nil, err
		}
		colleges = append(colleges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return colleges, nil
}
