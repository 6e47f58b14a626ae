package main

import (
	"context"
	"fmt"
	"net/http"

	"campus/internal/store"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type userKey string

const userCtx userKey = "user"

func getUserFromContext(r *http.Request) *store.User {
	user, _ := r.Context().Value(userCtx).(*store.User)
	return user
}

// for cloudinary uploadParams
func boolPtr(b bool) *bool {
	return &b
}

// getCurrentUserHandler godoc
//
//	@Summary		Get current user
//	@Description	Returns the authenticated user's profile
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	store.User
//	@Failure		401	{object}	error
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/me [get]
func (app *application) getCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if err := app.jsonResponse(w, http.StatusOK, user); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateUserPayload struct {
	FirstName      *string `json:"first_name" validate:"omitempty,min=1,max=50"`
	LastName       *string `json:"last_name" validate:"omitempty,min=1,max=50"`
	IntendedMajor  *string `json:"intended_major" validate:"omitempty,max=100"`
	GraduationYear *int    `json:"graduation_year" validate:"omitempty,gte=1900,lte=2100"`
}

// updateUserHandler godoc
//
//	@Summary		Update user profile
//	@Description	Partially updates the authenticated user's profile fields
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		UpdateUserPayload	true	"Fields to update"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/users [put]
func (app *application) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload UpdateUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	updates := map[string]interface{}{}
	if payload.FirstName != nil {
		updates["first_name"] = *payload.FirstName
	}
	if payload.LastName != nil {
		updates["last_name"] = *payload.LastName
	}
	if payload.IntendedMajor != nil {
		updates["intended_major"] = *payload.IntendedMajor
	}
	if payload.GraduationYear != nil {
		updates["graduation_year"] = *payload.GraduationYear
	}

	if len(updates) == 0 {
		app.badRequestResponse(w, r, errInvalidRequest("no fields to update"))
		return
	}

	if err := app.store.Users.UpdateUser(r.Context(), user.ID, updates); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "profile updated"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// uploadProfilePictureHandler godoc
//
//	@Summary		Upload profile picture
//	@Description	Uploads a user's profile picture and saves the URL in the database
//	@Tags			users
//	@Accept			mpfd
//	@Produce		json
//	@Param			profile_picture	formData	file	true	"Profile picture file size limit is 2MB"
//	@Success		200				{string}	string	"Profile picture uploaded successfully: <URL>"
//	@Failure		400				{object}	error	"Unable to parse form or retrieve file"
//	@Failure		500				{object}	error	"Failed to upload image to Cloudinary or save URL in database"
//	@Security		ApiKeyAuth
//	@Router			/users/profile-picture [post]
func (app *application) uploadProfilePictureHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	userID := user.ID
	overwrite := boolPtr(true)

	// Parse the multipart form
	err := r.ParseMultipartForm(2 << 20) // 2 MB
	if err != nil {
		http.Error(w, "Unable to parse form, file size limit is 2MB", http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("profile_picture")
	if err != nil {
		http.Error(w, "Unable to retrieve file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Validate file type (allow only JPEG & PNG)
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		http.Error(w, "Only JPEG and PNG images are allowed", http.StatusBadRequest)
		return
	}

	ctx := context.Background()

	uploadParams := uploader.UploadParams{
		PublicID:       fmt.Sprintf("/%d", userID), // Save with userID as filename
		Overwrite:      overwrite,
		Folder:         "profile_pictures",
		Transformation: "w_300,h_300,c_fill,q_auto", // Resize to 300x300, auto quality
	}
	uploadResult, err := app.cld.Upload.Upload(ctx, file, uploadParams)
	if err != nil {
		http.Error(w, "Failed to upload image to Cloudinary", http.StatusInternalServerError)
		return
	}

	if err := app.store.Users.SetProfile(r.Context(), uploadResult.SecureURL, userID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf("Profile picture uploaded successfully: %s", uploadResult.SecureURL)))
}

// updateProfilePictureHandler godoc
//
//	@Summary		Update profile picture
//	@Description	Updates a user's profile picture, saves the new URL in the database, and deletes the old one from Cloudinary
//	@Tags			users
//	@Accept			mpfd
//	@Produce		json
//	@Param			profile_picture	formData	file	true	"Profile picture file (max size: 2MB)"
//	@Success		200				{string}	string	"Profile picture updated successfully: <URL>"
//	@Failure		400				{object}	error	"Unable to parse form or retrieve file"
//	@Failure		500				{object}	error	"Failed to upload image to Cloudinary, update database, or delete old image"
//	@Security		ApiKeyAuth
//	@Router			/users/profile-picture [put]
func (app *application) updateProfilePictureHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	userID := user.ID

	err := r.ParseMultipartForm(2 << 20) // 2 MB limit
	if err != nil {
		http.Error(w, "Unable to parse form, file size limit is 2MB", http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("profile_picture")
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

	oldURL, err := app.store.Users.GetProfileUrl(r.Context(), userID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	ctx := context.Background()
	uploadParams := uploader.UploadParams{
		PublicID:       fmt.Sprintf("/%d", userID),
		Overwrite:      boolPtr(true),
		Folder:         "profile_pictures",
		Transformation: "w_300,h_300,c_fill,q_auto",
	}
	uploadResult, err := app.cld.Upload.Upload(ctx, file, uploadParams)
	if err != nil {
		http.Error(w, "Failed to upload image to Cloudinary", http.StatusInternalServerError)
		return
	}

	if err := app.store.Users.SetProfile(r.Context(), uploadResult.SecureURL, userID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// Best effort cleanup of the replaced asset.
	if oldURL != "" && oldURL != uploadResult.SecureURL {
		if err := app.deletePhotoFromCloudinary(oldURL); err != nil {
			app.logger.Warnw("failed to delete old profile picture", "error", err)
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf("Profile picture updated successfully: %s", uploadResult.SecureURL)))
}

// getSavedCollegesHandler godoc
//
//	@Summary		List saved colleges
//	@Description	Returns the colleges the authenticated user has bookmarked
//	@Tags			users
//	@Produce		json
//	@Success		200	{array}		store.College
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/saved-colleges [get]
func (app *application) getSavedCollegesHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	colleges, err := app.store.Colleges.GetSavedByUser(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, colleges); err != nil {
		app.internalServerError(w, r, err)
	}
}
