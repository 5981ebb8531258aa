package services

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type AuditEventType string

const (
	AuditRegister             AuditEventType = "register"
	AuditLogin                AuditEventType = "login"
	AuditLoginFailed          AuditEventType = "login_failed"
	AuditRefresh              AuditEventType = "refresh"
	AuditRefreshRejected      AuditEventType = "refresh_rejected"
	AuditLogout               AuditEventType = "logout"
	AuditPasswordChanged      AuditEventType = "password_changed"
	AuditPasswordChangeFailed AuditEventType = "password_change_failed"
)

type AuditEvent struct {
	Type    AuditEventType
	UserID  string
	IP      string
	Success bool
	Detail  string
	At      time.Time
}

// AuditRecorder stores authentication events. Implementations must not block
// the request on failure; errors are returned only so callers can log them.
type AuditRecorder interface {
	Record(ctx context.Context, event AuditEvent) error
}

// PostgresAuditRecorder appends events to the auth_events table.
type PostgresAuditRecorder struct {
	db *sql.DB
}

func NewPostgresAuditRecorder(db *sql.DB) *PostgresAuditRecorder {
	return &PostgresAuditRecorder{db: db}
}

func (r *PostgresAuditRecorder) Record(ctx context.Context, event AuditEvent) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_events (id, created_at, event_type, user_id, ip_address, success, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.New(), event.At, string(event.Type), nullable(event.UserID), nullable(event.IP), event.Success, nullable(event.Detail))
	return err
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// LogAuditRecorder writes events to the structured log when no audit database is configured.
type LogAuditRecorder struct {
	logger *slog.Logger
}

func NewLogAuditRecorder(logger *slog.Logger) *LogAuditRecorder {
	return &LogAuditRecorder{logger: logger}
}

func (r *LogAuditRecorder) Record(ctx context.Context, event AuditEvent) error {
	r.logger.InfoContext(ctx, "auth event",
		"event", string(event.Type),
		"user_id", event.UserID,
		"ip", event.IP,
		"success", event.Success,
		"detail", event.Detail,
	)
	return nil
}

type clientIPKey struct{}

// ContextWithClientIP attaches the caller's IP so audit events can record it.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// recordAudit fills in the client IP and logs recorder failures.
func recordAudit(ctx context.Context, rec AuditRecorder, logger *slog.Logger, event AuditEvent) {
	if rec == nil {
		return
	}
	if event.IP == "" {
		event.IP = clientIPFromContext(ctx)
	}
	if err := rec.Record(ctx, event); err != nil {
		logger.WarnContext(ctx, "failed to record auth event", "event", string(event.Type), "error", err)
	}
}
