package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"campus/internal/mailer"
	"campus/internal/notifications"
	"campus/internal/params"
	"campus/internal/store"

	"github.com/go-chi/chi/v5"
)

func (app *application) applicationIDFromURL(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "applicationID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidRequest("invalid application ID")
	}
	return id, nil
}

type CreateApplicationPayload struct {
	IntendedMajor     string `json:"intended_major" validate:"required,min=2,max=100"`
	PersonalStatement string `json:"personal_statement" validate:"required,min=100,max=10000"`
}

// createApplicationHandler godoc
//
//	@Summary		Apply to a college
//	@Description	Submits an application to a college. A user can hold only one open application per college.
//	@Tags			applications
//	@Accept			json
//	@Produce		json
//	@Param			collegeID	path		int64						true	"College ID"
//	@Param			payload		body		CreateApplicationPayload	true	"Application details"
//	@Success		201			{object}	store.Application
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		404			{object}	error
//	@Failure		409			{object}	error	"Open application already exists"
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/colleges/{collegeID}/applications [post]
func (app *application) createApplicationHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	collegeID, err := app.collegeIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload CreateApplicationPayload
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

	application := &store.Application{
		UserID:            user.ID,
		CollegeID:         collegeID,
		IntendedMajor:     payload.IntendedMajor,
		PersonalStatement: payload.PersonalStatement,
	}

	if err := app.store.Applications.Create(r.Context(), application); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateApplication):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// Confirmation push is best effort.
	if err := notifications.SendApplicationNotification(
		r.Context(), app.push, app.store, user.ID,
		notifications.ApplicationReceived, application.ReferenceCode,
	); err != nil {
		app.logger.Warnw("failed to send application push", "error", err)
	}

	if err := app.jsonResponse(w, http.StatusCreated, application); err != nil {
		app.internalServerError(w, r, err)
	}
}

// ApplicationListWithMetaResponse is the paginated application listing envelope.
type ApplicationListWithMetaResponse struct {
	Applications []store.Application `json:"applications"`
	Pagination   params.Pagination   `json:"pagination"`
}

// listMyApplicationsHandler godoc
//
//	@Summary		List my applications
//	@Description	Returns the caller's applications, newest first
//	@Tags			applications
//	@Produce		json
//	@Param			page	query		int	false	"Page number"		default(1)
//	@Param			limit	query		int	false	"Items per page"	default(15)
//	@Success		200		{object}	ApplicationListWithMetaResponse
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/applications [get]
func (app *application) listMyApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	p := params.ParsePagination(r.URL.Query())

	applications, total, err := app.store.Applications.ListByUser(r.Context(), user.ID, p)
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

// getApplicationHandler godoc
//
//	@Summary		Get an application
//	@Description	Returns one application. Students can only see their own; admins can see any.
//	@Tags			applications
//	@Produce		json
//	@Param			applicationID	path		int64	true	"Application ID"
//	@Success		200				{object}	store.Application
//	@Failure		400				{object}	ErrorBadRequestResponse
//	@Failure		403				{object}	error
//	@Failure		404				{object}	error
//	@Failure		500				{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/applications/{applicationID} [get]
func (app *application) getApplicationHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	applicationID, err := app.applicationIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	application, err := app.store.Applications.GetByID(r.Context(), applicationID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if application.UserID != user.ID && !user.IsAdmin() {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, application); err != nil {
		app.internalServerError(w, r, err)
	}
}

// withdrawApplicationHandler godoc
//
//	@Summary		Withdraw an application
//	@Description	Withdraws the caller's own open application. Decided applications cannot be withdrawn.
//	@Tags			applications
//	@Produce		json
//	@Param			applicationID	path		int64	true	"Application ID"
//	@Success		200				{object}	map[string]string
//	@Failure		400				{object}	ErrorBadRequestResponse
//	@Failure		404				{object}	error
//	@Failure		409				{object}	error	"Application is not open"
//	@Failure		500				{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/applications/{applicationID}/withdraw [put]
func (app *application) withdrawApplicationHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	applicationID, err := app.applicationIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.store.Applications.Withdraw(r.Context(), applicationID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, store.ErrInvalidTransition):
			app.conflictResponse(w, r, errors.New("only open applications can be withdrawn"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "application withdrawn"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// uploadApplicationDocumentHandler godoc
//
//	@Summary		Upload application document
//	@Description	Attaches a supporting document (PDF or image, max 10MB) to the caller's open application
//	@Tags			applications
//	@Accept			mpfd
//	@Produce		json
//	@Param			applicationID	path		int64	true	"Application ID"
//	@Param			document		formData	file	true	"Document file"
//	@Success		201				{object}	map[string]string
//	@Failure		400				{object}	ErrorBadRequestResponse
//	@Failure		404				{object}	error	"Application not found or not open"
//	@Failure		500				{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/applications/{applicationID}/documents [post]
func (app *application) uploadApplicationDocumentHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	applicationID, err := app.applicationIDFromURL(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10 MB
		http.Error(w, "Unable to parse form, file size limit is 10MB", http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("document")
	if err != nil {
		http.Error(w, "Unable to retrieve file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	switch contentType {
	case "application/pdf", "image/jpeg", "image/png":
	default:
		http.Error(w, "Only PDF, JPEG and PNG documents are allowed", http.StatusBadRequest)
		return
	}

	publicID := fmt.Sprintf("application_%d_doc_%d", applicationID, time.Now().UnixNano())
	url, err := app.uploadToCloudinaryWithID(file, "application_documents", publicID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Applications.AddDocumentURL(r.Context(), applicationID, user.ID, url); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, map[string]string{"document_url": url}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// notifyApplicationDecision pushes and emails the applicant after a status
// change. Both channels are best effort.
func (app *application) notifyApplicationDecision(r *http.Request, application *store.Application) {
	var event notifications.ApplicationEvent
	switch application.Status {
	case store.ApplicationUnderReview:
		event = notifications.ApplicationUnderReview
	case store.ApplicationAccepted:
		event = notifications.ApplicationAccepted
	case store.ApplicationRejected:
		event = notifications.ApplicationRejected
	default:
		return
	}

	if err := notifications.SendApplicationNotification(
		r.Context(), app.push, app.store, application.UserID, event, application.ReferenceCode,
	); err != nil {
		app.logger.Warnw("failed to send application push", "error", err)
	}

	vars := struct {
		Username      string
		ReferenceCode string
		CollegeName   string
		Status        string
		AdminNote     *string
	}{
		Username:      application.UserName,
		ReferenceCode: application.ReferenceCode,
		CollegeName:   application.CollegeName,
		Status:        application.Status,
		AdminNote:     application.AdminNote,
	}

	status, err := app.mailer.Send(mailer.ApplicationStatusTemplate, application.UserName, application.UserEmail, vars)
	if err != nil {
		app.logger.Errorw("error sending application status email", "error", err)
		return
	}
	app.logger.Infow("application status email sent", "status code", status)
}
