package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/AnshRaj112/videotube-backend/internal/logging"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresAuditRecorder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO auth_events").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "login", "u1", "203.0.113.7", true, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO auth_events").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "refresh_rejected", nil, nil, false, "refresh token is expired or used").
		WillReturnError(errors.New("connection reset"))

	rec := NewPostgresAuditRecorder(db)
	ctx := context.Background()

	require.NoError(t, rec.Record(ctx, AuditEvent{Type: AuditLogin, UserID: "u1", IP: "203.0.113.7", Success: true}))
	assert.Error(t, rec.Record(ctx, AuditEvent{Type: AuditRefreshRejected, Detail: "refresh token is expired or used"}))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordAuditSwallowsRecorderErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO auth_events").WillReturnError(errors.New("down"))

	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: "warn", Writer: &buf})
	ctx := ContextWithClientIP(context.Background(), "198.51.100.1")

	recordAudit(ctx, NewPostgresAuditRecorder(db), logger, AuditEvent{Type: AuditLogout, UserID: "u1", Success: true})
	recordAudit(ctx, nil, logger, AuditEvent{Type: AuditLogout})

	assert.Contains(t, buf.String(), "failed to record auth event")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogAuditRecorder(t *testing.T) {
	var buf bytes.Buffer
	rec := NewLogAuditRecorder(logging.New(logging.Config{Writer: &buf}))

	require.NoError(t, rec.Record(context.Background(), AuditEvent{Type: AuditRegister, UserID: "u1", Success: true}))

	out := buf.String()
	assert.Contains(t, out, `"event":"register"`)
	assert.Contains(t, out, `"user_id":"u1"`)
}
