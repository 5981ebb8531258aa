package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/middleware"
	"github.com/AnshRaj112/videotube-backend/internal/services"
	"github.com/AnshRaj112/videotube-backend/pkg/utils"
)

const refreshTokenCookie = "refreshToken"

// CookiePolicy controls the attributes of the token cookies.
type CookiePolicy struct {
	Secure   bool
	SameSite http.SameSite
}

// UserHandler serves the /api/v1/users routes.
type UserHandler struct {
	users    *services.UserService
	sessions *services.SessionManager
	logger   *slog.Logger

	cookies        CookiePolicy
	accessTTL      time.Duration
	refreshTTL     time.Duration
	maxUploadBytes int64
}

type Options struct {
	Logger         *slog.Logger
	Cookies        CookiePolicy
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	MaxUploadBytes int64
}

func NewUserHandler(users *services.UserService, sessions *services.SessionManager, opts Options) *UserHandler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Cookies.SameSite == 0 {
		opts.Cookies.SameSite = http.SameSiteStrictMode
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &UserHandler{
		users:          users,
		sessions:       sessions,
		logger:         opts.Logger,
		cookies:        opts.Cookies,
		accessTTL:      opts.AccessTTL,
		refreshTTL:     opts.RefreshTTL,
		maxUploadBytes: opts.MaxUploadBytes,
	}
}

// writeError is the single place errors become responses. Anything that is
// not an *utils.APIError is logged and reported as a bare 500.
func (h *UserHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := utils.StatusOf(err)
	message := "internal server error"
	var apiErr *utils.APIError
	if errors.As(err, &apiErr) {
		message = apiErr.Message
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	utils.WriteError(w, status, message)
}

func (h *UserHandler) setTokenCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	h.setCookie(w, middleware.AccessTokenCookie, accessToken, h.accessTTL)
	h.setCookie(w, refreshTokenCookie, refreshToken, h.refreshTTL)
}

func (h *UserHandler) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: h.cookies.SameSite,
	}
	if ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
		c.Expires = time.Now().Add(ttl).UTC()
	}
	http.SetCookie(w, c)
}

func (h *UserHandler) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0).UTC(),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cookies.Secure,
			SameSite: h.cookies.SameSite,
		})
	}
}

func decodeJSON(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return utils.BadRequest("request body is required")
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return utils.BadRequest("request body is required")
		}
		return utils.BadRequest("invalid request body")
	}
	return nil
}

// parseMultipart bounds the body to maxUploadBytes before parsing.
func (h *UserHandler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return utils.NewAPIError(http.StatusRequestEntityTooLarge, "upload is too large")
		}
		return utils.BadRequest("invalid multipart form")
	}
	return nil
}

// formUpload returns the named file, or nil when the field is absent. The
// caller closes the returned file.
func formUpload(r *http.Request, field string) (*services.Upload, multipart.File) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return &services.Upload{Filename: header.Filename, Content: file}, file
}

func closeAll(files ...multipart.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}
