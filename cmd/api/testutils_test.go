package main

import (
	"context"
	"net/http"
	"time"

	"campus/internal/params"
	"campus/internal/scoring"
	"campus/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestApplication(storage store.Storage) *application {
	return &application{
		config:        config{env: "test"},
		store:         storage,
		logger:        zap.NewNop().Sugar(),
		contentPolicy: LoadContentPolicy(),
	}
}

// withURLParam injects a chi route parameter without running the router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withUser(r *http.Request, user *store.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userCtx, user))
}

type stubColleges struct {
	getByIDFn func(ctx context.Context, id int64) (*store.College, error)
	existsFn  func(ctx context.Context, id int64) (bool, error)
}

func (s *stubColleges) Create(ctx context.Context, c *store.College) error { return nil }
func (s *stubColleges) GetByID(ctx context.Context, id int64) (*store.College, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}
func (s *stubColleges) List(ctx context.Context, f store.CollegeFilter) ([]store.College, int, error) {
	return nil, 0, nil
}
func (s *stubColleges) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	return nil
}
func (s *stubColleges) Delete(ctx context.Context, id int64) error { return nil }
func (s *stubColleges) Exists(ctx context.Context, id int64) (bool, error) {
	if s.existsFn != nil {
		return s.existsFn(ctx, id)
	}
	return true, nil
}
func (s *stubColleges) AddPhotoURL(ctx context.Context, id int64, url string) error    { return nil }
func (s *stubColleges) RemovePhotoURL(ctx context.Context, id int64, url string) error { return nil }
func (s *stubColleges) Save(ctx context.Context, userID, collegeID int64) error        { return nil }
func (s *stubColleges) Unsave(ctx context.Context, userID, collegeID int64) error      { return nil }
func (s *stubColleges) GetSavedByUser(ctx context.Context, userID int64) ([]store.College, error) {
	return nil, nil
}

type stubReviews struct {
	createFn  func(ctx context.Context, r *store.Review) error
	getByIDFn func(ctx context.Context, id int64) (*store.Review, error)
	updateFn  func(ctx context.Context, r *store.Review) error
	listFn    func(ctx context.Context, collegeID int64, p params.Pagination) ([]store.Review, int, error)
}

func (s *stubReviews) Create(ctx context.Context, r *store.Review) error {
	if s.createFn != nil {
		return s.createFn(ctx, r)
	}
	r.ID = 1
	r.IsActive = true
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	return nil
}
func (s *stubReviews) GetByID(ctx context.Context, id int64) (*store.Review, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}
func (s *stubReviews) Update(ctx context.Context, r *store.Review) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, r)
	}
	return nil
}
func (s *stubReviews) SoftDelete(ctx context.Context, reviewID int64) error { return nil }
func (s *stubReviews) Restore(ctx context.Context, reviewID int64) error    { return nil }
func (s *stubReviews) ListActiveByCollege(ctx context.Context, collegeID int64, p params.Pagination) ([]store.Review, int, error) {
	if s.listFn != nil {
		return s.listFn(ctx, collegeID, p)
	}
	return nil, 0, nil
}
func (s *stubReviews) AddHelpfulVote(ctx context.Context, reviewID, userID int64) (bool, error) {
	return true, nil
}
func (s *stubReviews) RemoveHelpfulVote(ctx context.Context, reviewID, userID int64) (bool, error) {
	return true, nil
}
func (s *stubReviews) AddReport(ctx context.Context, reviewID, userID int64) (bool, error) {
	return true, nil
}
func (s *stubReviews) ListReported(ctx context.Context, minReports int, p params.Pagination) ([]store.Review, int, error) {
	return nil, 0, nil
}

type stubRatings struct {
	recomputed []int64
	err        error
}

func (s *stubRatings) Recompute(ctx context.Context, collegeID int64) (*scoring.RatingSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.recomputed = append(s.recomputed, collegeID)
	return &scoring.RatingSummary{}, nil
}
