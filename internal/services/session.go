package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/AnshRaj112/videotube-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionOptions configures optional SessionManager collaborators.
type SessionOptions struct {
	Audit  AuditRecorder
	Logger *slog.Logger
	// RevokeOnPasswordChange clears the stored refresh token after a password change.
	RevokeOnPasswordChange bool
}

// SessionManager drives the session lifecycle:
// Anonymous -> Authenticated -> (Refreshed)* -> LoggedOut.
type SessionManager struct {
	users                  UserStore
	tokens                 *TokenIssuer
	audit                  AuditRecorder
	logger                 *slog.Logger
	revokeOnPasswordChange bool
}

func NewSessionManager(users UserStore, tokens *TokenIssuer, opts SessionOptions) *SessionManager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		users:                  users,
		tokens:                 tokens,
		audit:                  opts.Audit,
		logger:                 logger,
		revokeOnPasswordChange: opts.RevokeOnPasswordChange,
	}
}

type LoginInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	User         models.SanitizedUser `json:"user"`
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
}

// Login verifies credentials, issues a token pair and stores the refresh token.
func (m *SessionManager) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	username := utils.NormalizeUsername(in.Username)
	email := utils.NormalizeEmail(in.Email)
	if username == "" && email == "" {
		return nil, utils.BadRequest("username or email is required")
	}
	if in.Password == "" {
		return nil, utils.BadRequest("password is required")
	}

	user, err := m.users.FindByIdentity(ctx, username, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			m.record(ctx, AuditEvent{Type: AuditLoginFailed, Detail: "unknown user"})
			return nil, utils.NotFound("user does not exist")
		}
		return nil, utils.Internal("failed to look up user", err)
	}

	ok, err := utils.VerifyPassword(in.Password, user.Password)
	if err != nil {
		return nil, utils.Internal("failed to verify password", err)
	}
	if !ok {
		m.record(ctx, AuditEvent{Type: AuditLoginFailed, UserID: user.ID.Hex(), Detail: "wrong password"})
		return nil, utils.Unauthorized("password is incorrect")
	}

	pair, err := m.tokens.IssueTokenPair(user)
	if err != nil {
		return nil, utils.Internal("something went wrong while generating access and refresh token", err)
	}
	if err := m.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, utils.Internal("something went wrong while generating access and refresh token", err)
	}

	m.record(ctx, AuditEvent{Type: AuditLogin, UserID: user.ID.Hex(), Success: true})
	return &LoginResult{
		User:         user.Sanitize(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// be the user's current one; after a successful exchange it is no longer
// accepted. Every failure is reported as Unauthorized.
func (m *SessionManager) Refresh(ctx context.Context, presented string) (TokenPair, error) {
	if presented == "" {
		return TokenPair{}, utils.Unauthorized("unauthorized request")
	}

	pair, userID, err := m.rotate(ctx, presented)
	if err != nil {
		var apiErr *utils.APIError
		if !errors.As(err, &apiErr) {
			m.logger.WarnContext(ctx, "refresh token rejected", "error", err)
			apiErr = utils.Unauthorized("invalid refresh token")
		}
		m.record(ctx, AuditEvent{Type: AuditRefreshRejected, UserID: userID, Detail: apiErr.Message})
		return TokenPair{}, apiErr
	}

	m.record(ctx, AuditEvent{Type: AuditRefresh, UserID: userID, Success: true})
	return pair, nil
}

func (m *SessionManager) rotate(ctx context.Context, presented string) (TokenPair, string, error) {
	hexID, err := m.tokens.VerifyRefreshToken(presented)
	if err != nil {
		return TokenPair{}, "", err
	}
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return TokenPair{}, "", err
	}

	user, err := m.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return TokenPair{}, hexID, utils.Unauthorized("invalid refresh token")
		}
		return TokenPair{}, hexID, err
	}
	if user.RefreshToken != presented {
		return TokenPair{}, hexID, utils.Unauthorized("refresh token is expired or used")
	}

	pair, err := m.tokens.IssueTokenPair(user)
	if err != nil {
		return TokenPair{}, hexID, err
	}
	if err := m.users.RotateRefreshToken(ctx, id, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, ErrRefreshTokenMismatch) || errors.Is(err, ErrUserNotFound) {
			return TokenPair{}, hexID, utils.Unauthorized("refresh token is expired or used")
		}
		return TokenPair{}, hexID, err
	}
	return pair, hexID, nil
}

// Logout clears the stored refresh token. Calling it again is harmless.
func (m *SessionManager) Logout(ctx context.Context, userID primitive.ObjectID) error {
	if err := m.users.ClearRefreshToken(ctx, userID); err != nil && !errors.Is(err, ErrUserNotFound) {
		return utils.Internal("failed to log out", err)
	}
	m.record(ctx, AuditEvent{Type: AuditLogout, UserID: userID.Hex(), Success: true})
	return nil
}

// ChangePassword replaces the password hash after verifying the old password.
// A wrong old password leaves the stored hash untouched.
func (m *SessionManager) ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return utils.BadRequest("old and new password are required")
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return utils.NotFound("user does not exist")
		}
		return utils.Internal("failed to look up user", err)
	}

	ok, err := utils.VerifyPassword(oldPassword, user.Password)
	if err != nil {
		return utils.Internal("failed to verify password", err)
	}
	if !ok {
		m.record(ctx, AuditEvent{Type: AuditPasswordChangeFailed, UserID: userID.Hex(), Detail: "wrong old password"})
		return utils.BadRequest("invalid old password")
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return utils.Internal("failed to hash password", err)
	}
	if err := m.users.UpdatePassword(ctx, userID, hash); err != nil {
		return utils.Internal("failed to update password", err)
	}

	if m.revokeOnPasswordChange {
		if err := m.users.ClearRefreshToken(ctx, userID); err != nil {
			m.logger.WarnContext(ctx, "failed to revoke refresh token after password change", "user_id", userID.Hex(), "error", err)
		}
	}

	m.record(ctx, AuditEvent{Type: AuditPasswordChanged, UserID: userID.Hex(), Success: true})
	return nil
}

// Authenticate resolves an access token to its user. Used by the auth middleware.
func (m *SessionManager) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, utils.Unauthorized("unauthorized request")
	}
	claims, err := m.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, utils.Unauthorized("invalid access token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, utils.Unauthorized("invalid access token")
	}
	user, err := m.users.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			m.logger.ErrorContext(ctx, "failed to load user for access token", "user_id", claims.UserID, "error", err)
		}
		return nil, utils.Unauthorized("invalid access token")
	}
	return user, nil
}

func (m *SessionManager) record(ctx context.Context, event AuditEvent) {
	recordAudit(ctx, m.audit, m.logger, event)
}
