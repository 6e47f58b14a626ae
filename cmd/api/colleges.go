package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"campus/internal/params"
	"campus/internal/store"

	"github.com/go-chi/chi/v5"
)

func (app *application) collegeIDFromURL(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "collegeID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidRequest("invalid college ID")
	}
	return id, nil
}

type CreateCollegePayload struct {
	Name            string  `json:"name" validate:"required,min=2,max=200"`
	City            string  `json:"city" validate:"required,max=100"`
	State           string  `json:"state" validate:"required,max=100"`
	Type            string  `json:"type" validate:"required,oneof=public private"`
	Website         *string `json:"website" validate:"omitempty,url"`
	Description     *string `json:"description" validate:"omitempty,max=5000"`
	EstablishedYear *int    `json:"established_year" validate:"omitempty,gte=1000,lte=2100"`
}

// createCollegeHandler godoc
//
//	@Summary		Create a college
//	@Description	Creates a college entry (admin only)
//	@Tags			colleges
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateCollegePayload	true	"College details"
//	@Success		201		{object}	store.College
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		409		{object}	error	"College with this name already exists"
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/colleges [post]
func (app *application) createCollegeHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateCollegePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	college := &store.College{
		Name:            payload.Name,
		City:            payload.City,
		State:           payload.State,
		Type:            payload.Type,
		Website:         payload.Website,
		Description:     payload.Description,
		EstablishedYear: payload.EstablishedYear,
	}

	if err := app.store.Colleges.Create(r.Context(), college); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, errors.New("a college with this name already exists"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, college); err != nil {
		app.internalServerError(w, r, err)
	}
}

// CollegeListWithMetaResponse is the paginated college listing envelope.
type CollegeListWithMetaResponse struct {
	Colleges   []store.College   `json:"colleges"`
	Pagination params.Pagination `json:"pagination"`
}

// listCollegesHandler godoc
//
//	@Summary		List colleges
//	@Description	Paginated college listing with optional search, type and rating filters.
//	@Tags			colleges
//	@Produce		json
//	@Param			search		query		string	false	"Match against name or city"
//	@Param			type		query		string	false	"Filter by type (public|private)"
//	@Param			min_rating	query		number	false	"Minimum average rating"
//	@Param			sort		query		string	false	"Sort order (rating|reviews|name)"
//	@Param			page		query		int		false	"Page number"		default(1)
//	@Param			limit		query		int		false	"Items per page"	default(15)
//	@Success		200			{object}	CollegeListWithMetaResponse
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Router			/colleges [get]
func (app *application) listCollegesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	p := params.ParsePagination(q)

	filter := store.CollegeFilter{
		Search:     strings.TrimSpace(q.Get("search")),
		Pagination: p,
	}

	if t := strings.TrimSpace(q.Get("type")); t != "" {
		switch t {
		case "public", "private":
			filter.Type = t
		default:
			app.badRequestResponse(w, r, errInvalidRequest("invalid type filter"))
			return
		}
	}

	if mr := strings.TrimSpace(q.Get("min_rating")); mr != "" {
		minRating, err := strconv.ParseFloat(mr, 64)
		if err != nil || minRating < 0 || minRating > 5 {
			app.badRequestResponse(w, r, errInvalidRequest("invalid min_rating filter"))
			return
		}
		filter.MinRating = &minRating
	}

	if sort := strings.TrimSpace(q.Get("sort")); sort != "" {
		switch sort {
		case "rating", "reviews", "name":
			filter.Sort = sort
		default:
			app.badRequestResponse(w, r, errInvalidRequest("invalid sort order"))
			return
		}
	}

	colleges, total, err := app.store.Colleges.List(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	p.ComputeMeta(total)

	out := CollegeListWithMetaResponse{
		Colleges:   colleges,
		Pagination: p,
	}

	if err := app.jsonResponse(w, http.StatusOK, out); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getCollegeHandler godoc
//
//	@Summary		Get a college
//	@Description	Returns a college with its rating summary and breakdown
//	@Tags			colleges
//	@Produce		json
//	@Param			collegeID	path		int64	true	"College ID"
//	@Success		200			{object}	store.College
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Router			/colleges/{collegeID} [get]
func (app *application) getCollegeHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := app.jsonResponse(w, http.StatusOK, college); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateCollegePayload struct {
	Name            *string `json:"name" validate:"omitempty,min=2,max=200"`
	City            *string `json:"city" validate:"omitempty,max=100"`
	State           *string `json:"state" validate:"omitempty,max=100"`
	Type            *string `json:"type" validate:"omitempty,oneof=public private"`
	Website         *string `json:"website" validate:"omitempty,url"`
	Description     *string `json:"description" validate:"omitempty,max=5000"`
	EstablishedYear *int    `json:"established_year" validate:"omitempty,gte=1000,lte=2100"`
}

// updateCollegeHandler godoc
//
//	@Summary		Update college information
//	@Description	Partially updates a college's descriptive fields (admin only). Rating summary fields cannot be set here.
//	@Tags			colleges
//	@Accept			json
//	@Produce		json
//	@Param			collegeID	path		int64					true	"College ID"
//	@Param			payload		body		UpdateCollegePayload	true	"Fields to update"
//	@Success		200			{object}	map[string]string
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/colleges/{collegeID} [patch]
func (app *application) updateCollegeHandler(w http.ResponseWriter, r *http.Request) {
	collegeID, err := app.collegeIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateCollegePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	updates := map[string]interface{}{}
	if payload.Name != nil {
		updates["name"] = *payload.Name
	}
	if payload.City != nil {
		updates["city"] = *payload.City
	}
	if payload.State != nil {
		updates["state"] = *payload.State
	}
	if payload.Type != nil {
		updates["type"] = *payload.Type
	}
	if payload.Website != nil {
		updates["website"] = *payload.Website
	}
	if payload.Description != nil {
		updates["description"] = *payload.Description
	}
	if payload.EstablishedYear != nil {
		updates["established_year"] = *payload.EstablishedYear
	}

	if len(updates) == 0 {
		app.badRequestResponse(w, r, errInvalidRequest("no fields to update"))
		return
	}

	if err := app.store.Colleges.Update(r.Context(), collegeID, updates); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "college updated"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteCollegeHandler godoc
//
//	@Summary		Delete a college
//	@Description	Deletes a college along with its reviews, applications and bookmarks (admin only)
//	@Tags			colleges
//	@Produce		json
//	@Param			collegeID	path		int64	true	"College ID"
//	@Success		204			{string}	string	"No Content"
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/colleges/{collegeID} [delete]
func (app *application) deleteCollegeHandler(w http.ResponseWriter, r *http.Request) {
	collegeID, err := app.collegeIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Colleges.Delete(r.Context(), collegeID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// uploadCollegePhotoHandler godoc
//
//	@Summary		Upload college photo
//	@Description	Uploads a photo to Cloudinary and appends its URL to the college gallery (admin only)
//	@Tags			colleges
//	@Accept			mpfd
//	@Produce		json
//	@Param			collegeID	path		int64	true	"College ID"
//	@Param			photo		formData	file	true	"Photo file (max 5MB)"
//	@Success		201			{object}	map[string]string
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/colleges/{collegeID}/photos [post]
func (app *application) uploadCollegePhotoHandler(w http.ResponseWriter, r *http.Request) {
	collegeID, err := app.collegeIDFromURL(r)
	if err != nil {
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

	if err := r.ParseMultipartForm(5 << 20); err != nil { // 5 MB
		http.Error(w, "Unable to parse form, file size limit is 5MB", http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "Unable to retrieve file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		http.Error(w, "Only JPEG and PNG images are allowed", http.StatusBadRequest)
		return
	}

	publicID := fmt.Sprintf("college_%d_image_%d", collegeID, time.Now().UnixNano())
	url, err := app.uploadToCloudinaryWithID(file, "colleges", publicID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Colleges.AddPhotoURL(r.Context(), collegeID, url); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, map[string]string{"photo_url": url}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteCollegePhotoHandler godoc
//
//	@Summary		Delete college photo
//	@Description	Removes a photo URL from the college gallery and deletes the asset from Cloudinary (admin only)
//	@Tags			colleges
//	@Produce		json
//	@Param			collegeID	path		int64	true	"College ID"
//	@Param			photo_url	query		string	true	"Photo URL to remove"
//	@Success		204			{string}	string	"No Content"
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/colleges/{collegeID}/photos [delete]
func (app *application) deleteCollegePhotoHandler(w http.ResponseWriter, r *http.Request) {
	collegeID, err := app.collegeIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	photoURL := strings.TrimSpace(r.URL.Query().Get("photo_url"))
	if photoURL == "" {
		app.badRequestResponse(w, r, errInvalidRequest("photo_url query parameter is required"))
		return
	}

	if err := app.store.Colleges.RemovePhotoURL(r.Context(), collegeID, photoURL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.deletePhotoFromCloudinary(photoURL); err != nil {
		app.logger.Warnw("failed to delete college photo from cloudinary", "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

// saveCollegeHandler godoc
//
//	@Summary		Save a college
//	@Description	Bookmarks a college for the authenticated user. Saving twice is a no-op.
//	@Tags			colleges
//	@Produce		json
//	@Param			collegeID	path		int64	true	"College ID"
//	@Success		204			{string}	string	"No Content"
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/colleges/{collegeID}/save [put]
func (app *application) saveCollegeHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	collegeID, err := app.collegeIDFromURL(r)
	if err != nil {
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

	if err := app.store.Colleges.Save(r.Context(), user.ID, collegeID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// unsaveCollegeHandler godoc
//
//	@Summary		Unsave a college
//	@Description	Removes a college from the authenticated user's bookmarks
//	@Tags			colleges
//	@Produce		json
//	@Param			collegeID	path		int64	true	"College ID"
//	@Success		204			{string}	string	"No Content"
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/colleges/{collegeID}/save [delete]
func (app *application) unsaveCollegeHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	collegeID, err := app.collegeIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Colleges.Unsave(r.Context(), user.ID, collegeID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
