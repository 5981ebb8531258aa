package services

import (
	"testing"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewTokenIssuerValidatesConfig(t *testing.T) {
	cfg := testTokenConfig()
	cfg.AccessSecret = nil
	_, err := NewTokenIssuer(cfg)
	assert.Error(t, err)

	cfg = testTokenConfig()
	cfg.RefreshSecret = cfg.AccessSecret
	_, err = NewTokenIssuer(cfg)
	assert.Error(t, err)

	cfg = testTokenConfig()
	cfg.RefreshTTL = 0
	_, err = NewTokenIssuer(cfg)
	assert.Error(t, err)
}

func TestIssueTokenPairRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)
	user := &models.User{ID: primitive.NewObjectID(), Username: "al", Email: "al@x.com", FullName: "Al"}

	pair, err := issuer.IssueTokenPair(user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := issuer.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "al", claims.Username)
	assert.Equal(t, "test", claims.Issuer)

	id, err := issuer.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), id)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	issuer := newTestIssuer(t)
	pair, err := issuer.IssueTokenPair(&models.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	_, err = issuer.VerifyRefreshToken(pair.AccessToken)
	assert.Error(t, err)
	_, err = issuer.VerifyAccessToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestConsecutivePairsDiffer(t *testing.T) {
	issuer := newTestIssuer(t)
	user := &models.User{ID: primitive.NewObjectID()}

	a, err := issuer.IssueTokenPair(user)
	require.NoError(t, err)
	b, err := issuer.IssueTokenPair(user)
	require.NoError(t, err)

	assert.NotEqual(t, a.AccessToken, b.AccessToken)
	assert.NotEqual(t, a.RefreshToken, b.RefreshToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t)
	issuer.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	pair, err := issuer.IssueTokenPair(&models.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.VerifyRefreshToken(pair.RefreshToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	issuer := newTestIssuer(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, RefreshClaims{
		UserID: primitive.NewObjectID().Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("refresh-secret"))
	require.NoError(t, err)

	_, err = issuer.VerifyRefreshToken(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsForeignIssuerAndGarbage(t *testing.T) {
	issuer := newTestIssuer(t)
	cfg := testTokenConfig()
	cfg.Issuer = "someone-else"
	other, err := NewTokenIssuer(cfg)
	require.NoError(t, err)

	pair, err := other.IssueTokenPair(&models.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)
	_, err = issuer.VerifyAccessToken(pair.AccessToken)
	assert.Error(t, err)

	_, err = issuer.VerifyAccessToken("not.a.jwt")
	assert.Error(t, err)
	_, err = issuer.VerifyRefreshToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
