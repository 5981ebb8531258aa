package handlers

import (
	"net/http"

	"github.com/AnshRaj112/videotube-backend/pkg/utils"
)

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// CurrentUser handles GET /current-user.
func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	sanitized, err := h.users.CurrentUser(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, sanitized, "current user fetched successfully")
}

// UpdateAccount handles PATCH /update-account with {fullName, email}.
func (h *UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.users.UpdateAccountDetails(r.Context(), user.ID, req.FullName, req.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, updated, "account details updated successfully")
}

// UpdateAvatar handles PATCH /update-avatar (multipart field avatar).
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if err := h.parseMultipart(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	upload, file := formUpload(r, "avatar")
	defer closeAll(file)

	updated, err := h.users.UpdateAvatar(r.Context(), user.ID, upload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, updated, "avatar image updated successfully")
}

// UpdateCoverImage handles PATCH /update-cover-image (multipart field coverImage).
func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if err := h.parseMultipart(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	upload, file := formUpload(r, "coverImage")
	defer closeAll(file)

	updated, err := h.users.UpdateCoverImage(r.Context(), user.ID, upload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, updated, "cover image updated successfully")
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}
