package store

import (
	"context"
	"errors"
	"time"

	"campus/internal/params"
	"campus/internal/scoring"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateReview = errors.New("user has already reviewed this college")

// Review is one student's take on one college. A (user, college) pair gets at
// most one review, enforced by a unique index. Soft-deleted reviews keep
// their row with is_active=false and drop out of aggregation and listings.
type Review struct {
	ID             int64           `json:"id"`
	CollegeID      int64           `json:"college_id"`
	UserID         int64           `json:"user_id"`
	Ratings        scoring.Ratings `json:"ratings"`
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	Pros           []string        `json:"pros,omitempty"`
	Cons           []string        `json:"cons,omitempty"`
	WouldRecommend bool            `json:"would_recommend"`
	Helpful        VoterSet        `json:"helpful"`
	Reported       VoterSet        `json:"reported"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Joined fields
	UserName  string  `json:"user_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Snapshot freezes the review into the scorer's input shape.
func (r *Review) Snapshot() scoring.ReviewSnapshot {
	return scoring.ReviewSnapshot{
		Ratings:        r.Ratings,
		Title:          r.Title,
		Content:        r.Content,
		Pros:           r.Pros,
		Cons:           r.Cons,
		WouldRecommend: r.WouldRecommend,
		HelpfulCount:   r.Helpful.Count(),
		ReportCount:    r.Reported.Count(),
	}
}

type ReviewsStore struct {
	db *pgxpool.Pool
}

const reviewColumns = `
	r.id, r.college_id, r.user_id,
	r.rating_overall, r.rating_academics, r.rating_campus_life,
	r.rating_facilities, r.rating_location, r.rating_value,
	r.title, r.content, r.pros, r.cons, r.would_recommend,
	r.helpful_voters, r.report_voters, r.is_active, r.created_at, r.updated_at`

func scanReview(row pgx.Row, r *Review, joined bool) error {
	var helpful, reported []int64

	dest := []any{
		&r.ID, &r.CollegeID, &r.UserID,
		&r.Ratings.Overall, &r.Ratings.Academics, &r.Ratings.CampusLife,
		&r.Ratings.Facilities, &r.Ratings.Location, &r.Ratings.Value,
		&r.Title, &r.Content, &r.Pros, &r.Cons, &r.WouldRecommend,
		&helpful, &reported, &r.IsActive, &r.CreatedAt, &r.UpdatedAt,
	}
	if joined {
		dest = append(dest, &r.UserName, &r.AvatarURL)
	}

	if err := row.Scan(dest...); err != nil {
		return err
	}

	r.Helpful = VoterSet(helpful)
	r.Reported = VoterSet(reported)
	return nil
}

func (s *ReviewsStore) Create(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO reviews (
			college_id, user_id,
			rating_overall, rating_academics, rating_campus_life,
			rating_facilities, rating_location, rating_value,
			title, content, pros, cons, would_recommend
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, is_active, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		review.CollegeID,
		review.UserID,
		review.Ratings.Overall,
		review.Ratings.Academics,
		review.Ratings.CampusLife,
		review.Ratings.Facilities,
		review.Ratings.Location,
		review.Ratings.Value,
		review.Title,
		review.Content,
		review.Pros,
		review.Cons,
		review.WouldRecommend,
	).Scan(&review.ID, &review.IsActive, &review.CreatedAt, &review.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateReview
	}
	return err
}

func (s *ReviewsStore) GetByID(ctx context.Context, reviewID int64) (*Review, error) {
	query := `SELECT` + reviewColumns + `
		FROM reviews r
		WHERE r.id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	review := &Review{}
	err := scanReview(s.db.QueryRow(ctx, query, reviewID), review, false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return review, nil
}

// Update rewrites the author-editable fields. Moderation state and voter
// arrays are managed through their own methods. Soft-deleted reviews cannot
// be edited; they must be restored first.
func (s *ReviewsStore) Update(ctx context.Context, review *Review) error {
	query := `
		UPDATE reviews
		SET rating_overall = $1, rating_academics = $2, rating_campus_life = $3,
		    rating_facilities = $4, rating_location = $5, rating_value = $6,
		    title = $7, content = $8, pros = $9, cons = $10,
		    would_recommend = $11, updated_at = NOW()
		WHERE id = $12 AND is_active = true
		RETURNING updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		review.Ratings.Overall,
		review.Ratings.Academics,
		review.Ratings.CampusLife,
		review.Ratings.Facilities,
		review.Ratings.Location,
		review.Ratings.Value,
		review.Title,
		review.Content,
		review.Pros,
		review.Cons,
		review.WouldRecommend,
		review.ID,
	).Scan(&review.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// SoftDelete deactivates a review. The row stays so the (user, college)
// uniqueness and moderation history survive.
func (s *ReviewsStore) SoftDelete(ctx context.Context, reviewID int64) error {
	return s.setActive(ctx, reviewID, false)
}

func (s *ReviewsStore) Restore(ctx context.Context, reviewID int64) error {
	return s.setActive(ctx, reviewID, true)
}

func (s *ReviewsStore) setActive(ctx context.Context, reviewID int64, active bool) error {
	query := `UPDATE reviews SET is_active = $1, updated_at = NOW() WHERE id = $2`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	result, err := s.db.Exec(ctx, query, active, reviewID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ReviewsStore) ListActiveByCollege(ctx context.Context, collegeID int64, p params.Pagination) ([]Review, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var total int
	countQuery := `SELECT COUNT(*) FROM reviews WHERE college_id = $1 AND is_active = true`
	if err := s.db.QueryRow(ctx, countQuery, collegeID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + reviewColumns + `, u.first_name, u.profile_picture_url
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.college_id = $1 AND r.is_active = true
		ORDER BY r.created_at DESC
		OFFSET $2 LIMIT $3
	`

	rows, err := s.db.Query(ctx, query, collegeID, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var review Review
		if err := scanReview(rows, &review, true); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// AddHelpfulVote appends the voter to the helpful set unless already present.
// Returns false when the vote was a no-op. The count is never stored; it is
// always the array's cardinality. Inactive reviews take no votes.
func (s *ReviewsStore) AddHelpfulVote(ctx context.Context, reviewID, userID int64) (bool, error) {
	query := `
		UPDATE reviews
		SET helpful_voters = array_append(helpful_voters, $1), updated_at = NOW()
		WHERE id = $2 AND is_active = true AND NOT helpful_voters @> ARRAY[$1]::bigint[]
	`
	return s.voteExec(ctx, query, userID, reviewID)
}

func (s *ReviewsStore) RemoveHelpfulVote(ctx context.Context, reviewID, userID int64) (bool, error) {
	query := `
		UPDATE reviews
		SET helpful_voters = array_remove(helpful_voters, $1), updated_at = NOW()
		WHERE id = $2 AND is_active = true AND helpful_voters @> ARRAY[$1]::bigint[]
	`
	return s.voteExec(ctx, query, userID, reviewID)
}

// AddReport flags a review for moderation. One report per user. Inactive
// reviews take no reports.
func (s *ReviewsStore) AddReport(ctx context.Context, reviewID, userID int64) (bool, error) {
	query := `
		UPDATE reviews
		SET report_voters = array_append(report_voters, $1), updated_at = NOW()
		WHERE id = $2 AND is_active = true AND NOT report_voters @> ARRAY[$1]::bigint[]
	`
	return s.voteExec(ctx, query, userID, reviewID)
}

func (s *ReviewsStore) voteExec(ctx context.Context, query string, userID, reviewID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	result, err := s.db.Exec(ctx, query, userID, reviewID)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// ListReported returns active reviews carrying at least minReports flags,
// most-reported first, for the moderation queue.
func (s *ReviewsStore) ListReported(ctx context.Context, minReports int, p params.Pagination) ([]Review, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var total int
	countQuery := `
		SELECT COUNT(*) FROM reviews
		WHERE is_active = true AND cardinality(report_voters) >= $1
	`
	if err := s.db.QueryRow(ctx, countQuery, minReports).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + reviewColumns + `
		FROM reviews r
		WHERE r.is_active = true AND cardinality(r.report_voters) >= $1
		ORDER BY cardinality(r.report_voters) DESC, r.created_at DESC
		OFFSET $2 LIMIT $3
	`

	rows, err := s.db.Query(ctx, query, minReports, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var review Review
		if err := scanReview(rows, &review, false); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}
