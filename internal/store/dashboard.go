package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TopCollege struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

type Overview struct {
	TotalUsers          int            `json:"total_users"`
	TotalColleges       int            `json:"total_colleges"`
	TotalActiveReviews  int            `json:"total_active_reviews"`
	TotalApplications   int            `json:"total_applications"`
	ApplicationsByState map[string]int `json:"applications_by_status"`
	TopColleges         []TopCollege   `json:"top_colleges"`
}

type DashboardStore struct {
	db *pgxpool.Pool
}

func (s *DashboardStore) Overview(ctx context.Context) (*Overview, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	ov := &Overview{
		ApplicationsByState: map[string]int{},
		TopColleges:         []TopCollege{},
	}

	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM colleges),
			(SELECT COUNT(*) FROM reviews WHERE is_active = true),
			(SELECT COUNT(*) FROM applications)
	`).Scan(&ov.TotalUsers, &ov.TotalColleges, &ov.TotalActiveReviews, &ov.TotalApplications)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		ov.ApplicationsByState[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	topRows, err := s.db.Query(ctx, `
		SELECT id, name, average_rating, total_reviews
		FROM colleges
		WHERE total_reviews > 0
		ORDER BY average_rating DESC, total_reviews DESC
		LIMIT 5
	`)
	if err != nil {
		return nil, err
	}
	defer topRows.Close()
	for topRows.Next() {
		var tc TopCollege
		if err := topRows.Scan(&tc.ID, &tc.Name, &tc.AverageRating, &tc.TotalReviews); err != nil {
			return nil, err
		}
		ov.TopColleges = append(ov.TopColleges, tc)
	}
	return ov, topRows.Err()
}
