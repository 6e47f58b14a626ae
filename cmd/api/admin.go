package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"campus/internal/params"
	"campus/internal/store"
)

// adminOverviewHandler godoc
//
//	@Summary		Admin overview totals
//	@Description	Returns dashboard totals: users, colleges, active reviews, applications by status, top rated colleges.
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	store.Overview
//	@Failure		401	{object}	error
//	@Failure		403	{object}	error
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/overview [get]
func (app *application) adminOverviewHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 12*time.Second)
	defer cancel()

	out, err := app.store.Dashboard.Overview(ctx)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	_ = app.jsonResponse(w, http.StatusOK, out)
}

// ReportedReviewsResponse is the paginated reported review listing.
type ReportedReviewsResponse struct {
	Reviews    []store.Review    `json:"reviews"`
	Pagination params.Pagination `json:"pagination"`
}

// adminListReportedReviewsHandler godoc
//
//	@Summary		List reported reviews
//	@Description	Paginated reviews with at least min_reports reports, most reported first.
//	@Tags			admin
//	@Produce		json
//	@Param			min_reports	query		int	false	"Minimum report count"	default(1)
//	@Param			page		query		int	false	"Page number"			default(1)
//	@Param			limit		query		int	false	"Items per page"		default(15)
//	@Success		200			{object}	ReportedReviewsResponse
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/reviews/reported [get]
func (app *application) adminListReportedReviewsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := params.ParsePagination(q)

	minReports := 1
	if mr := strings.TrimSpace(q.Get("min_reports")); mr != "" {
		parsed, err := strconv.Atoi(mr)
		if err != nil || parsed < 1 {
			app.badRequestResponse(w, r, errInvalidRequest("invalid min_reports"))
			return
		}
		minReports = parsed
	}

	reviews, total, err := app.store.Reviews.ListReported(r.Context(), minReports, p)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	p.ComputeMeta(total)

	out := ReportedReviewsResponse{
		Reviews:    reviews,
		Pagination: p,
	}

	if err := app.jsonResponse(w, http.StatusOK, out); err != nil {
		app.internalServerError(w, r, err)
	}
}

// adminRestoreReviewHandler godoc
//
//	@Summary		Restore a review
//	@Description	Reactivates a soft-deleted review, bringing it back into listings and aggregation.
//	@Tags			admin
//	@Produce		json
//	@Param			reviewID	path		int64	true	"Review ID"
//	@Success		200			{object}	map[string]string
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/reviews/{reviewID}/restore [put]
func (app *application) adminRestoreReviewHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := app.store.Reviews.Restore(r.Context(), reviewID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.recomputeCollegeRating(r, review.CollegeID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "review restored"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// adminRemoveReviewHandler godoc
//
//	@Summary		Remove a review (moderation)
//	@Description	Soft-deletes any review as a moderation action.
//	@Tags			admin
//	@Produce		json
//	@Param			reviewID	path		int64	true	"Review ID"
//	@Success		200			{object}	map[string]string
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/reviews/{reviewID} [delete]
func (app *application) adminRemoveReviewHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := app.store.Reviews.SoftDelete(r.Context(), reviewID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.recomputeCollegeRating(r, review.CollegeID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "review removed"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// adminListApplicationsHandler godoc
//
//	@Summary		List applications for a college (admin)
//	@Description	Paginated applications for a college, oldest first, with optional status filter.
//	@Tags			admin
//	@Produce		json
//	@Param			collegeID	path		int64	true	"College ID"
//	@Param			status		query		string	false	"Filter by status (submitted|under_review|accepted|rejected|withdrawn)"
//	@Param			page		query		int		false	"Page number"		default(1)
//	@Param			limit		query		int		false	"Items per page"	default(15)
//	@Success		200			{object}	ApplicationListWithMetaResponse
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/colleges/{collegeID}/applications [get]
func (app *application) adminListApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	collegeID, err := app.collegeIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	q := r.URL.Query()
	p := params.ParsePagination(q)

	status := strings.TrimSpace(q.Get("status"))
	if status != "" {
		switch status {
		case store.ApplicationSubmitted, store.ApplicationUnderReview,
			store.ApplicationAccepted, store.ApplicationRejected, store.ApplicationWithdrawn:
		default:
			app.badRequestResponse(w, r, errInvalidRequest("invalid status filter"))
			return
		}
	}

	applications, total, err := app.store.Applications.ListByCollege(r.Context(), collegeID, status, p)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	p.ComputeMeta(total)

	out := ApplicationListWithMetaResponse{
		Applications: applications,
		Pagination:   p,
	}

	if err := app.jsonResponse(w, http.StatusOK, out); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateApplicationStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=under_review accepted rejected"`
	Note   string `json:"note" validate:"omitempty,max=2000"`
}

// adminUpdateApplicationStatusHandler godoc
//
//	@Summary		Update application status (admin)
//	@Description	Moves an application along the review pipeline: submitted to under_review, then under_review to accepted or rejected. The applicant is notified by push and email.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			applicationID	path		int64							true	"Application ID"
//	@Param			payload			body		UpdateApplicationStatusPayload	true	"New status and optional note"
//	@Success		200				{object}	store.Application
//	@Failure		400				{object}	ErrorBadRequestResponse
//	@Failure		404				{object}	error
//	@Failure		409				{object}	error	"Invalid status transition"
//	@Failure		500				{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/applications/{applicationID}/status [patch]
func (app *application) adminUpdateApplicationStatusHandler(w http.ResponseWriter, r *http.Request) {
	applicationID, err := app.applicationIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateApplicationStatusPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	application, err := app.store.Applications.UpdateStatus(r.Context(), applicationID, payload.Status, payload.Note)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, store.ErrInvalidTransition):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.notifyApplicationDecision(r, application)

	if err := app.jsonResponse(w, http.StatusOK, application); err != nil {
		app.internalServerError(w, r, err)
	}
}
