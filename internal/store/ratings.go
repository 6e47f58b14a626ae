package store

import (
	"context"

	"campus/internal/scoring"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RatingsStore maintains the denormalized rating summary on college rows.
// It owns those columns exclusively: review handlers never touch them, they
// just call Recompute after changing the review set.
type RatingsStore struct {
	db *pgxpool.Pool
}

// Recompute rebuilds a college's rating summary from its active reviews and
// writes it back in one full replace. The whole summary is computed before
// anything is written, so a failure leaves the old summary intact. Concurrent
// recomputes for the same college may interleave; the last completed write
// wins with a snapshot that was consistent when it was read. That brief
// staleness window is accepted for this aggregate.
//
// The caller guarantees the college exists; Recompute only verifies the write
// landed on a row.
func (s *RatingsStore) Recompute(ctx context.Context, collegeID int64) (*scoring.RatingSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	ratings, err := s.activeRatings(ctx, collegeID)
	if err != nil {
		return nil, err
	}

	summary := scoring.Summarize(ratings)

	query := `
		UPDATE colleges
		SET average_rating = $1,
		    total_reviews = $2,
		    rating_academics = $3,
		    rating_campus_life = $4,
		    rating_facilities = $5,
		    rating_location = $6,
		    rating_value = $7,
		    updated_at = NOW()
		WHERE id = $8
	`

	result, err := s.db.Exec(ctx, query,
		summary.AverageRating,
		summary.TotalReviews,
		summary.Breakdown.Academics,
		summary.Breakdown.CampusLife,
		summary.Breakdown.Facilities,
		summary.Breakdown.Location,
		summary.Breakdown.Value,
		collegeID,
	)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return &summary, nil
}

func (s *RatingsStore) activeRatings(ctx context.Context, collegeID int64) ([]scoring.Ratings, error) {
	query := `
		SELECT rating_overall, rating_academics, rating_campus_life,
		       rating_facilities, rating_location, rating_value
		FROM reviews
		WHERE college_id = $1 AND is_active = true
	`

	rows, err := s.db.Query(ctx, query, collegeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []scoring.Ratings
	for rows.Next() {
		var r scoring.Ratings
		if err := rows.Scan(
			&r.Overall, &r.Academics, &r.CampusLife,
			&r.Facilities, &r.Location, &r.Value,
		); err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ratings, nil
}
