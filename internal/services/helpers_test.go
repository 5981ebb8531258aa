package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/logging"
	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/AnshRaj112/videotube-backend/pkg/utils"
	"github.com/stretchr/testify/require"
)

func testTokenConfig() TokenConfig {
	return TokenConfig{
		AccessSecret:  []byte("access-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshSecret: []byte("refresh-secret"),
		RefreshTTL:    24 * time.Hour,
		Issuer:        "test",
	}
}

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(testTokenConfig())
	require.NoError(t, err)
	return issuer
}

type recordingAudit struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (r *recordingAudit) Record(_ context.Context, e AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingAudit) types() []AuditEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AuditEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// seedUser stores a user with a real argon2id hash of password.
func seedUser(t *testing.T, store UserStore, username, email, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{
		Username: username,
		Email:    email,
		FullName: "Test " + username,
		Avatar:   "https://media.example/" + username + ".png",
		Password: hash,
	}
	require.NoError(t, store.Create(context.Background(), u))
	return u
}

type sessionFixture struct {
	store   *MemoryUserStore
	audit   *recordingAudit
	manager *SessionManager
}

func newSessionFixture(t *testing.T, opts SessionOptions) *sessionFixture {
	t.Helper()
	store := NewMemoryUserStore()
	audit := &recordingAudit{}
	opts.Audit = audit
	opts.Logger = logging.Discard()
	return &sessionFixture{
		store:   store,
		audit:   audit,
		manager: NewSessionManager(store, newTestIssuer(t), opts),
	}
}
