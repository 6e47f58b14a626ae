package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"campus/internal/params"
	"campus/internal/scoring"
	"campus/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReviewContent = "The professors here genuinely care about teaching and the smaller classes " +
	"made asking questions easy. Campus housing was dated but affordable, and the library " +
	"stayed open late during exams which helped enormously."

func validCreateReviewPayload() CreateReviewPayload {
	return CreateReviewPayload{
		RatingOverall:    5,
		RatingAcademics:  4,
		RatingCampusLife: 4,
		RatingFacilities: 3,
		RatingLocation:   5,
		RatingValue:      4,
		Title:            "Great experience overall",
		Content:          validReviewContent,
		Pros:             []string{"caring professors", "affordable housing"},
		Cons:             []string{"dated dorms"},
		WouldRecommend:   true,
	}
}

func postReview(t *testing.T, app *application, payload CreateReviewPayload) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/colleges/7/reviews", bytes.NewReader(body))
	req = withURLParam(req, "collegeID", "7")
	req = withUser(req, &store.User{ID: 42, Role: store.RoleStudent})

	rr := httptest.NewRecorder()
	app.createReviewHandler(rr, req)
	return rr
}

func TestCreateReviewSuccessRecomputesRating(t *testing.T) {
	ratings := &stubRatings{}
	app := newTestApplication(store.Storage{
		Colleges: &stubColleges{},
		Reviews:  &stubReviews{},
		Ratings:  ratings,
	})

	rr := postReview(t, app, validCreateReviewPayload())

	assert.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, ratings.recomputed, 1)
	assert.Equal(t, int64(7), ratings.recomputed[0])
}

func TestCreateReviewDuplicate(t *testing.T) {
	app := newTestApplication(store.Storage{
		Colleges: &stubColleges{},
		Reviews: &stubReviews{
			createFn: func(ctx context.Context, r *store.Review) error {
				return store.ErrDuplicateReview
			},
		},
		Ratings: &stubRatings{},
	})

	rr := postReview(t, app, validCreateReviewPayload())

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestCreateReviewContentGate(t *testing.T) {
	ratings := &stubRatings{}
	app := newTestApplication(store.Storage{
		Colleges: &stubColleges{},
		Reviews:  &stubReviews{},
		Ratings:  ratings,
	})

	payload := validCreateReviewPayload()
	payload.Content = "Best deal on campus tours click now and save big, hurryyyyyy before this amazing offer is gone"

	rr := postReview(t, app, payload)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var resp ContentRejectedResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{
		"Content appears to be spam",
		"Content appears to be spam",
		"Review must contain at least 20 meaningful words",
	}, resp.Errors)

	// A rejected review must never reach aggregation.
	assert.Empty(t, ratings.recomputed)
}

func TestCreateReviewCollegeNotFound(t *testing.T) {
	app := newTestApplication(store.Storage{
		Colleges: &stubColleges{
			existsFn: func(ctx context.Context, id int64) (bool, error) { return false, nil },
		},
		Reviews: &stubReviews{},
		Ratings: &stubRatings{},
	})

	rr := postReview(t, app, validCreateReviewPayload())

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetCollegeReviewsAnnotations(t *testing.T) {
	college := &store.College{
		ID:            7,
		Name:          "Test College",
		AverageRating: 4.2,
		TotalReviews:  1,
	}
	review := store.Review{
		ID:        3,
		CollegeID: 7,
		UserID:    42,
		Ratings: scoring.Ratings{
			Overall: 5, Academics: 5, CampusLife: 4,
			Facilities: 4, Location: 5, Value: 4,
		},
		Title:          "Great experience overall",
		Content:        validReviewContent,
		Pros:           []string{"caring professors", "affordable housing"},
		Cons:           []string{"dated dorms"},
		WouldRecommend: true,
		IsActive:       true,
	}

	app := newTestApplication(store.Storage{
		Colleges: &stubColleges{
			getByIDFn: func(ctx context.Context, id int64) (*store.College, error) { return college, nil },
		},
		Reviews: &stubReviews{
			listFn: func(ctx context.Context, collegeID int64, p params.Pagination) ([]store.Review, int, error) {
				return []store.Review{review}, 1, nil
			},
		},
		Ratings: &stubRatings{},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/colleges/7/reviews", nil)
	req = withURLParam(req, "collegeID", "7")

	rr := httptest.NewRecorder()
	app.getCollegeReviewsHandler(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	// Voter sets marshal as bare counts, so decode a narrow shape here.
	var envelope struct {
		Data struct {
			Reviews []struct {
				ID           int64             `json:"id"`
				QualityScore float64           `json:"quality_score"`
				Sentiment    scoring.Sentiment `json:"sentiment"`
				Helpful      struct {
					Count int `json:"count"`
				} `json:"helpful"`
			} `json:"reviews"`
			Summary    scoring.RatingSummary `json:"summary"`
			Pagination params.Pagination     `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.Reviews, 1)
	got := envelope.Data.Reviews[0]

	expected := scoring.Score(review.Snapshot())
	assert.Equal(t, int64(3), got.ID)
	assert.Equal(t, expected.Score, got.QualityScore)
	assert.Equal(t, scoring.SentimentPositive, got.Sentiment)
	assert.Equal(t, 0, got.Helpful.Count)

	assert.Equal(t, 4.2, envelope.Data.Summary.AverageRating)
	assert.Equal(t, 1, envelope.Data.Summary.TotalReviews)
	assert.Equal(t, 1, envelope.Data.Pagination.Total)
}

func TestCreateReviewRecomputeFailureSurfaces(t *testing.T) {
	ratings := &stubRatings{err: errors.New("connection reset")}
	app := newTestApplication(store.Storage{
		Colleges: &stubColleges{},
		Reviews:  &stubReviews{},
		Ratings:  ratings,
	})

	rr := postReview(t, app, validCreateReviewPayload())

	// A failed summary refresh must not masquerade as success: the stored
	// aggregate no longer matches the review set.
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Empty(t, ratings.recomputed)
}

func TestUpdateReviewInactiveNotFound(t *testing.T) {
	existing := &store.Review{
		ID:        3,
		CollegeID: 7,
		UserID:    42,
		Ratings: scoring.Ratings{
			Overall: 4, Academics: 4, CampusLife: 4,
			Facilities: 4, Location: 4, Value: 4,
		},
		Title:   "Great experience overall",
		Content: validReviewContent,
	}

	ratings := &stubRatings{}
	app := newTestApplication(store.Storage{
		Reviews: &stubReviews{
			getByIDFn: func(ctx context.Context, id int64) (*store.Review, error) {
				return existing, nil
			},
			updateFn: func(ctx context.Context, r *store.Review) error {
				// The store rejects writes to soft-deleted reviews.
				return store.ErrNotFound
			},
		},
		Ratings: ratings,
	})

	body, err := json.Marshal(map[string]string{"title": "Edited title"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/v1/reviews/3", bytes.NewReader(body))
	req = withURLParam(req, "reviewID", "3")
	req = withUser(req, &store.User{ID: 42, Role: store.RoleStudent})

	rr := httptest.NewRecorder()
	app.updateReviewHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, ratings.recomputed)
}
