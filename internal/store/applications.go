package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus/internal/params"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	hashids "github.com/speps/go-hashids/v2"
)

var (
	ErrDuplicateApplication = errors.New("user already has an open application for this college")
	ErrInvalidTransition    = errors.New("invalid application status transition")
)

const (
	ApplicationSubmitted   = "submitted"
	ApplicationUnderReview = "under_review"
	ApplicationAccepted    = "accepted"
	ApplicationRejected    = "rejected"
	ApplicationWithdrawn   = "withdrawn"
)

// validTransitions maps each status to the admin-reachable next states.
// Withdrawn, accepted and rejected are terminal.
var validTransitions = map[string][]string{
	ApplicationSubmitted:   {ApplicationUnderReview},
	ApplicationUnderReview: {ApplicationAccepted, ApplicationRejected},
}

func canTransition(from, to string) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func isOpenStatus(status string) bool {
	return status == ApplicationSubmitted || status == ApplicationUnderReview
}

type Application struct {
	ID                int64     `json:"id"`
	ReferenceCode     string    `json:"reference_code"`
	UserID            int64     `json:"user_id"`
	CollegeID         int64     `json:"college_id"`
	IntendedMajor     string    `json:"intended_major"`
	PersonalStatement string    `json:"personal_statement"`
	Status            string    `json:"status"`
	AdminNote         *string   `json:"admin_note,omitempty"`
	DocumentURLs      []string  `json:"document_urls"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Populated on joined reads.
	CollegeName string `json:"college_name,omitempty"`
	UserName    string `json:"user_name,omitempty"`
	UserEmail   string `json:"user_email,omitempty"`
}

type ApplicationsStore struct {
	db *pgxpool.Pool
}

const referenceCodeSalt = "campus-application-codes"

// referenceCode derives a short human-readable code from the row id so
// applicants can quote it in support emails without leaking a raw sequence.
func referenceCode(id int64) (string, error) {
	hd := hashids.NewData()
	hd.Salt = referenceCodeSalt
	hd.MinLength = 8
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return "", err
	}
	code, err := h.EncodeInt64([]int64{id})
	if err != nil {
		return "", err
	}
	return "APP-" + code, nil
}

func (s *ApplicationsStore) Create(ctx context.Context, app *Application) error {
	return withTx(s.db, ctx, func(tx pgx.Tx) error {
		ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
		defer cancel()

		var exists bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM applications
				WHERE user_id = $1 AND college_id = $2 AND status IN ($3, $4)
			)`, app.UserID, app.CollegeID, ApplicationSubmitted, ApplicationUnderReview,
		).Scan(&exists)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateApplication
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO applications (user_id, college_id, intended_major, personal_statement, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, status, created_at, updated_at`,
			app.UserID, app.CollegeID, app.IntendedMajor, app.PersonalStatement, ApplicationSubmitted,
		).Scan(&app.ID, &app.Status, &app.CreatedAt, &app.UpdatedAt)
		if err != nil {
			return err
		}

		code, err := referenceCode(app.ID)
		if err != nil {
			return fmt.Errorf("failed to derive reference code: %w", err)
		}
		app.ReferenceCode = code

		_, err = tx.Exec(ctx, `UPDATE applications SET reference_code = $1 WHERE id = $2`, code, app.ID)
		return err
	})
}

const applicationColumns = `
	a.id, a.reference_code, a.user_id, a.college_id, a.intended_major,
	a.personal_statement, a.status, a.admin_note, a.document_urls,
	a.created_at, a.updated_at
`

func scanApplication(row pgx.Row, app *Application, joined bool) error {
	dest := []any{
		&app.ID,
		&app.ReferenceCode,
		&app.UserID,
		&app.CollegeID,
		&app.IntendedMajor,
		&app.PersonalStatement,
		&app.Status,
		&app.AdminNote,
		&app.DocumentURLs,
		&app.CreatedAt,
		&app.UpdatedAt,
	}
	if joined {
		dest = append(dest, &app.CollegeName, &app.UserName, &app.UserEmail)
	}
	return row.Scan(dest...)
}

func (s *ApplicationsStore) GetByID(ctx context.Context, applicationID int64) (*Application, error) {
	query := `
		SELECT ` + applicationColumns + `,
		       c.name, u.first_name || ' ' || u.last_name, u.email
		FROM applications a
		JOIN colleges c ON c.id = a.college_id
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	app := &Application{}
	err := scanApplication(s.db.QueryRow(ctx, query, applicationID), app, true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

func (s *ApplicationsStore) ListByUser(ctx context.Context, userID int64, p params.Pagination) ([]Application, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var total int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM applications WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + applicationColumns + `,
		       c.name, u.first_name || ' ' || u.last_name, u.email
		FROM applications a
		JOIN colleges c ON c.id = a.college_id
		JOIN users u ON u.id = a.user_id
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC
		OFFSET $2 LIMIT $3
	`

	rows, err := s.db.Query(ctx, query, userID, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	apps := []Application{}
	for rows.Next() {
		var app Application
		if err := scanApplication(rows, &app, true); err != nil {
			return nil, 0, err
		}
		apps = append(apps, app)
	}
	return apps, total, rows.Err()
}

func (s *ApplicationsStore) ListByCollege(ctx context.Context, collegeID int64, status string, p params.Pagination) ([]Application, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	where := `a.college_id = $1`
	args := []any{collegeID}
	if status != "" {
		where += ` AND a.status = $2`
		args = append(args, status)
	}

	var total int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM applications a WHERE `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT `+applicationColumns+`,
		       c.name, u.first_name || ' ' || u.last_name, u.email
		FROM applications a
		JOIN colleges c ON c.id = a.college_id
		JOIN users u ON u.id = a.user_id
		WHERE %s
		ORDER BY a.created_at ASC
		OFFSET $%d LIMIT $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, p.Offset, p.Limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	apps := []Application{}
	for rows.Next() {
		var app Application
		if err := scanApplication(rows, &app, true); err != nil {
			return nil, 0, err
		}
		apps = append(apps, app)
	}
	return apps, total, rows.Err()
}

// Withdraw marks the applicant's own open application withdrawn. Decided
// applications stay as the admin left them.
func (s *ApplicationsStore) Withdraw(ctx context.Context, applicationID, userID int64) error {
	return withTx(s.db, ctx, func(tx pgx.Tx) error {
		ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
		defer cancel()

		var status string
		err := tx.QueryRow(ctx,
			`SELECT status FROM applications WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			applicationID, userID,
		).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		if !isOpenStatus(status) {
			return ErrInvalidTransition
		}

		_, err = tx.Exec(ctx,
			`UPDATE applications SET status = $1, updated_at = NOW() WHERE id = $2`,
			ApplicationWithdrawn, applicationID)
		return err
	})
}

// UpdateStatus moves an application along the review pipeline. The allowed
// moves are submitted to under_review, then under_review to accepted or
// rejected. Anything else returns ErrInvalidTransition.
func (s *ApplicationsStore) UpdateStatus(ctx context.Context, applicationID int64, status, note string) (*Application, error) {
	err := withTx(s.db, ctx, func(tx pgx.Tx) error {
		ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
		defer cancel()

		var current string
		err := tx.QueryRow(ctx,
			`SELECT status FROM applications WHERE id = $1 FOR UPDATE`, applicationID,
		).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		if !canTransition(current, status) {
			return ErrInvalidTransition
		}

		var adminNote *string
		if note != "" {
			adminNote = &note
		}
		_, err = tx.Exec(ctx,
			`UPDATE applications SET status = $1, admin_note = $2, updated_at = NOW() WHERE id = $3`,
			status, adminNote, applicationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, applicationID)
}

func (s *ApplicationsStore) AddDocumentURL(ctx context.Context, applicationID, userID int64, url string) error {
	query := `
		UPDATE applications
		SET document_urls = array_append(document_urls, $1), updated_at = NOW()
		WHERE id = $2 AND user_id = $3 AND status IN ($4, $5)
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	res, err := s.db.Exec(ctx, query, url, applicationID, userID,
		ApplicationSubmitted, ApplicationUnderReview)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
