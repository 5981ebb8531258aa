package handlers

import (
	"net/http"

	"github.com/AnshRaj112/videotube-backend/internal/middleware"
	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/AnshRaj112/videotube-backend/internal/services"
	"github.com/AnshRaj112/videotube-backend/pkg/utils"
)

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Register handles POST /register (multipart: fullName, email, username, password, avatar, coverImage).
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	avatar, avatarFile := formUpload(r, "avatar")
	cover, coverFile := formUpload(r, "coverImage")
	defer closeAll(avatarFile, coverFile)

	user, err := h.users.Register(r.Context(), services.RegisterInput{
		FullName:   r.FormValue("fullName"),
		Email:      r.FormValue("email"),
		Username:   r.FormValue("username"),
		Password:   r.FormValue("password"),
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, user, "user registered successfully")
}

// Login handles POST /login with {username|email, password}.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginInput
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.sessions.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.setTokenCookies(w, result.AccessToken, result.RefreshToken)
	utils.WriteSuccess(w, http.StatusOK, result, "user logged in successfully")
}

// Logout handles POST /logout.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Logout(r.Context(), user.ID); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.clearTokenCookies(w)
	utils.WriteSuccess(w, http.StatusOK, struct{}{}, "user logged out")
}

// RefreshToken handles POST /refresh-token. The token comes from the
// refreshToken cookie, falling back to the JSON body.
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var presented string
	if c, err := r.Cookie(refreshTokenCookie); err == nil {
		presented = c.Value
	}
	if presented == "" && r.ContentLength != 0 {
		var req refreshTokenRequest
		if err := decodeJSON(r, &req); err == nil {
			presented = req.RefreshToken
		}
	}

	pair, err := h.sessions.Refresh(r.Context(), presented)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.setTokenCookies(w, pair.AccessToken, pair.RefreshToken)
	utils.WriteSuccess(w, http.StatusOK, pair, "access token refreshed")
}

// ChangePassword handles POST /change-password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.sessions.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, struct{}{}, "password changed successfully")
}

// currentUser returns the user placed in the context by VerifyJWT.
func (h *UserHandler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, r, utils.Unauthorized("unauthorized request"))
		return nil, false
	}
	return user, true
}
