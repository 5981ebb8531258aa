package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AnshRaj112/videotube-backend/internal/logging"
	"github.com/AnshRaj112/videotube-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestWriteErrorBoundary(t *testing.T) {
	var logs bytes.Buffer
	h := NewUserHandler(nil, nil, Options{Logger: logging.New(logging.Config{Writer: &logs})})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)

	rec := httptest.NewRecorder()
	h.writeError(rec, req, errors.New("mongo: connection pool cleared"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"statusCode":500,"message":"internal server error","success":false}`, rec.Body.String())
	assert.Contains(t, logs.String(), "connection pool cleared")

	rec = httptest.NewRecorder()
	h.writeError(rec, req, utils.Conflict("email is already in use"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"statusCode":409,"message":"email is already in use","success":false}`, rec.Body.String())

	logs.Reset()
	rec = httptest.NewRecorder()
	h.writeError(rec, req, utils.Internal("failed to generate tokens", errors.New("signing key missing")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"statusCode":500,"message":"failed to generate tokens","success":false}`, rec.Body.String())
	assert.Contains(t, logs.String(), "signing key missing")
	assert.Contains(t, logs.String(), `"status":500`)
}

func TestNewUserHandlerDefaults(t *testing.T) {
	h := NewUserHandler(nil, nil, Options{})
	assert.Equal(t, http.SameSiteStrictMode, h.cookies.SameSite)
	assert.Equal(t, int64(10<<20), h.maxUploadBytes)
}
