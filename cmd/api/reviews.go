package main

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"campus/internal/params"
	"campus/internal/scoring"
	"campus/internal/store"

	"github.com/go-chi/chi/v5"
)

func (app *application) reviewIDFromURL(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidRequest("invalid review ID")
	}
	return id, nil
}

// recomputeCollegeRating refreshes the college's denormalized rating summary.
// Every write that touches a college's review set funnels through here, so
// the summary columns have a single writer. A failure means the stored
// summary no longer matches the review set, so callers must surface it
// rather than report success.
func (app *application) recomputeCollegeRating(r *http.Request, collegeID int64) error {
	if _, err := app.store.Ratings.Recompute(r.Context(), collegeID); err != nil {
		return fmt.Errorf("recompute rating for college %d: %w", collegeID, err)
	}
	return nil
}

type CreateReviewPayload struct {
	RatingOverall    int      `json:"rating_overall" validate:"required,min=1,max=5"`
	RatingAcademics  int      `json:"rating_academics" validate:"required,min=1,max=5"`
	RatingCampusLife int      `json:"rating_campus_life" validate:"required,min=1,max=5"`
	RatingFacilities int      `json:"rating_facilities" validate:"required,min=1,max=5"`
	RatingLocation   int      `json:"rating_location" validate:"required,min=1,max=5"`
	RatingValue      int      `json:"rating_value" validate:"required,min=1,max=5"`
	Title            string   `json:"title" validate:"required,min=5,max=100"`
	Content          string   `json:"content" validate:"required,min=50,max=2000"`
	Pros             []string `json:"pros" validate:"omitempty,max=10,dive,max=300"`
	Cons             []string `json:"cons" validate:"omitempty,max=10,dive,max=300"`
	WouldRecommend   bool     `json:"would_recommend"`
}

func (p *CreateReviewPayload) ratings() scoring.Ratings {
	return scoring.Ratings{
		Overall:    p.RatingOverall,
		Academics:  p.RatingAcademics,
		CampusLife: p.RatingCampusLife,
		Facilities: p.RatingFacilities,
		Location:   p.RatingLocation,
		Value:      p.RatingValue,
	}
}

// ContentRejectedResponse is returned when a review fails the content gate.
type ContentRejectedResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// createReviewHandler godoc
//
//	@Summary		Create a review
//	@Description	Publishes a review for a college. Content must pass the quality gate; one review per user per college.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			collegeID	path		int64				true	"College ID"
//	@Param			payload		body		CreateReviewPayload	true	"Review details"
//	@Success		201			{object}	store.Review
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		404			{object}	error
//	@Failure		409			{object}	error	"User already reviewed this college"
//	@Failure		422			{object}	ContentRejectedResponse
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/colleges/{collegeID}/reviews [post]
func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	collegeID, err := app.collegeIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload CreateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	exists, err := app.store.Colleges.Exists(r.Context(), collegeID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if !exists {
		app.notFoundResponse(w, r, store.ErrNotFound)
		return
	}

	check := app.contentPolicy.Validate(payload.Title, payload.Content)
	if !check.IsValid {
		writeJSON(w, http.StatusUnprocessableEntity, ContentRejectedResponse{
			Message: "review content rejected",
			Errors:  check.Errors,
		})
		return
	}

	review := &store.Review{
		CollegeID:      collegeID,
		UserID:         user.ID,
		Ratings:        payload.ratings(),
		Title:          payload.Title,
		Content:        payload.Content,
		Pros:           payload.Pros,
		Cons:           payload.Cons,
		WouldRecommend: payload.WouldRecommend,
	}

	if err := app.store.Reviews.Create(r.Context(), review); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateReview):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.recomputeCollegeRating(r, collegeID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

// ReviewWithQuality pairs a review with its computed quality annotations.
type ReviewWithQuality struct {
	store.Review
	QualityScore float64           `json:"quality_score"`
	Sentiment    scoring.Sentiment `json:"sentiment"`
}

// CollegeReviewsResponse is the paginated review listing for a college.
type CollegeReviewsResponse struct {
	Reviews    []ReviewWithQuality   `json:"reviews"`
	Summary    scoring.RatingSummary `json:"summary"`
	Pagination params.Pagination     `json:"pagination"`
}

// getCollegeReviewsHandler godoc
//
//	@Summary		List college reviews
//	@Description	Paginated active reviews for a college, newest first, each annotated with a quality score and sentiment.
//	@Tags			reviews
//	@Produce		json
//	@Param			collegeID	path		int64	true	"College ID"
//	@Param			page		query		int		false	"Page number"		default(1)
//	@Param			limit		query		int		false	"Items per page"	default(15)
//	@Param			sort		query		string	false	"Sort order"		Enums(recent, quality)
//	@Success		200			{object}	CollegeReviewsResponse
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Router			/colleges/{collegeID}/reviews [get]
func (app *application) getCollegeReviewsHandler(w http.ResponseWriter, r *http.Request) {
	collegeID, err := app.collegeIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	college, err := app.store.Colleges.GetByID(r.Context(), collegeID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	p := params.ParsePagination(r.URL.Query())

	reviews, total, err := app.store.Reviews.ListActiveByCollege(r.Context(), collegeID, p)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	p.ComputeMeta(total)

	annotated := make([]ReviewWithQuality, 0, len(reviews))
	for _, rev := range reviews {
		quality := scoring.Score(rev.Snapshot())
		annotated = append(annotated, ReviewWithQuality{
			Review:       rev,
			QualityScore: quality.Score,
			Sentiment:    quality.Sentiment,
		})
	}

	// Quality sort reorders within the page; pages themselves stay newest
	// first so pagination remains stable across requests.
	if r.URL.Query().Get("sort") == "quality" {
		sort.SliceStable(annotated, func(i, j int) bool {
			return annotated[i].QualityScore > annotated[j].QualityScore
		})
	}

	out := CollegeReviewsResponse{
		Reviews: annotated,
		Summary: scoring.RatingSummary{
			AverageRating: college.AverageRating,
			TotalReviews:  college.TotalReviews,
			Breakdown:     college.Breakdown,
		},
		Pagination: p,
	}

	if err := app.jsonResponse(w, http.StatusOK, out); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateReviewPayload struct {
	RatingOverall    *int      `json:"rating_overall" validate:"omitempty,min=1,max=5"`
	RatingAcademics  *int      `json:"rating_academics" validate:"omitempty,min=1,max=5"`
	RatingCampusLife *int      `json:"rating_campus_life" validate:"omitempty,min=1,max=5"`
	RatingFacilities *int      `json:"rating_facilities" validate:"omitempty,min=1,max=5"`
	RatingLocation   *int      `json:"rating_location" validate:"omitempty,min=1,max=5"`
	RatingValue      *int      `json:"rating_value" validate:"omitempty,min=1,max=5"`
	Title            *string   `json:"title" validate:"omitempty,min=5,max=100"`
	Content          *string   `json:"content" validate:"omitempty,min=50,max=2000"`
	Pros             *[]string `json:"pros" validate:"omitempty,max=10,dive,max=300"`
	Cons             *[]string `json:"cons" validate:"omitempty,max=10,dive,max=300"`
	WouldRecommend   *bool     `json:"would_recommend"`
}

// updateReviewHandler godoc
//
//	@Summary		Update a review
//	@Description	Partially updates the caller's own review. The new content must pass the quality gate again.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			reviewID	path		int64				true	"Review ID"
//	@Param			payload		body		UpdateReviewPayload	true	"Fields to update"
//	@Success		200			{object}	store.Review
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Failure		422			{object}	ContentRejectedResponse
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID} [patch]
func (app *application) updateReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := app.reviewIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review, err := app.store.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if review.UserID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	if payload.RatingOverall != nil {
		review.Ratings.Overall = *payload.RatingOverall
	}
	if payload.RatingAcademics != nil {
		review.Ratings.Academics = *payload.RatingAcademics
	}
	if payload.RatingCampusLife != nil {
		review.Ratings.CampusLife = *payload.RatingCampusLife
	}
	if payload.RatingFacilities != nil {
		review.Ratings.Facilities = *payload.RatingFacilities
	}
	if payload.RatingLocation != nil {
		review.Ratings.Location = *payload.RatingLocation
	}
	if payload.RatingValue != nil {
		review.Ratings.Value = *payload.RatingValue
	}
	if payload.Title != nil {
		review.Title = *payload.Title
	}
	if payload.Content != nil {
		review.Content = *payload.Content
	}
	if payload.Pros != nil {
		review.Pros = *payload.Pros
	}
	if payload.Cons != nil {
		review.Cons = *payload.Cons
	}
	if payload.WouldRecommend != nil {
		review.WouldRecommend = *payload.WouldRecommend
	}

	check := app.contentPolicy.Validate(review.Title, review.Content)
	if !check.IsValid {
		writeJSON(w, http.StatusUnprocessableEntity, ContentRejectedResponse{
			Message: "review content rejected",
			Errors:  check.Errors,
		})
		return
	}

	if err := app.store.Reviews.Update(r.Context(), review); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.recomputeCollegeRating(r, review.CollegeID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteReviewHandler godoc
//
//	@Summary		Delete a review
//	@Description	Soft-deletes the caller's own review. The row is kept but leaves listings and aggregation.
//	@Tags			reviews
//	@Produce		json
//	@Param			reviewID	path		int64	true	"Review ID"
//	@Success		200			{object}	map[string]string
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID} [delete]
func (app *application) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := app.reviewIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review, err := app.store.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if review.UserID != user.ID && !user.IsAdmin() {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.store.Reviews.SoftDelete(r.Context(), reviewID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.recomputeCollegeRating(r, review.CollegeID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "review deleted"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// markReviewHelpfulHandler godoc
//
//	@Summary		Mark review helpful
//	@Description	Adds the caller's helpful vote to a review. Voting twice is a no-op.
//	@Tags			reviews
//	@Produce		json
//	@Param			reviewID	path		int64	true	"Review ID"
//	@Success		200			{object}	map[string]bool
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/helpful [put]
func (app *application) markReviewHelpfulHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := app.reviewIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review, err := app.store.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	added, err := app.store.Reviews.AddHelpfulVote(r.Context(), reviewID, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if added {
		if err := app.recomputeCollegeRating(r, review.CollegeID); err != nil {
			app.internalServerError(w, r, err)
			return
		}
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]bool{"added": added}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// unmarkReviewHelpfulHandler godoc
//
//	@Summary		Remove helpful vote
//	@Description	Removes the caller's helpful vote from a review
//	@Tags			reviews
//	@Produce		json
//	@Param			reviewID	path		int64	true	"Review ID"
//	@Success		200			{object}	map[string]bool
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/helpful [delete]
func (app *application) unmarkReviewHelpfulHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := app.reviewIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review, err := app.store.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	removed, err := app.store.Reviews.RemoveHelpfulVote(r.Context(), reviewID, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if removed {
		if err := app.recomputeCollegeRating(r, review.CollegeID); err != nil {
			app.internalServerError(w, r, err)
			return
		}
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]bool{"removed": removed}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// reportReviewHandler godoc
//
//	@Summary		Report a review
//	@Description	Flags a review for moderation. A user can report a given review once.
//	@Tags			reviews
//	@Produce		json
//	@Param			reviewID	path		int64	true	"Review ID"
//	@Success		200			{object}	map[string]bool
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/report [put]
func (app *application) reportReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := app.reviewIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review, err := app.store.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	added, err := app.store.Reviews.AddReport(r.Context(), reviewID, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if added {
		if err := app.recomputeCollegeRating(r, review.CollegeID); err != nil {
			app.internalServerError(w, r, err)
			return
		}
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]bool{"reported": added}); err != nil {
		app.internalServerError(w, r, err)
	}
}
