package services

import (
	"errors"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenConfig holds the signing secrets and lifetimes for both token kinds.
type TokenConfig struct {
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AccessClaims are carried by access tokens so requests can be authorized
// without a store lookup.
type AccessClaims struct {
	UserID   string `json:"_id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims carry the user id only.
type RefreshClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 JWTs. It has no side effects; storing
// the refresh token is the caller's job.
type TokenIssuer struct {
	config TokenConfig
	now    func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("token secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	return &TokenIssuer{config: cfg, now: time.Now}, nil
}

// IssueTokenPair signs a new access/refresh pair for user.
func (t *TokenIssuer) IssueTokenPair(user *models.User) (TokenPair, error) {
	access, err := t.issueAccess(user)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.issueRefresh(user.ID.Hex())
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *TokenIssuer) issueAccess(user *models.User) (string, error) {
	claims := AccessClaims{
		UserID:           user.ID.Hex(),
		Username:         user.Username,
		Email:            user.Email,
		FullName:         user.FullName,
		RegisteredClaims: t.registered(t.config.AccessTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.config.AccessSecret)
}

func (t *TokenIssuer) issueRefresh(userID string) (string, error) {
	claims := RefreshClaims{
		UserID:           userID,
		RegisteredClaims: t.registered(t.config.RefreshTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.config.RefreshSecret)
}

// registered fills the standard claims. The random jti keeps two tokens minted
// within the same second distinct.
func (t *TokenIssuer) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := t.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    t.config.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// VerifyAccessToken checks signature, algorithm, issuer and expiry.
func (t *TokenIssuer) VerifyAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := t.parse(token, claims, t.config.AccessSecret); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefreshToken returns the user id embedded in a valid refresh token.
func (t *TokenIssuer) VerifyRefreshToken(token string) (string, error) {
	claims := &RefreshClaims{}
	if err := t.parse(token, claims, t.config.RefreshSecret); err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

func (t *TokenIssuer) parse(token string, claims jwt.Claims, secret []byte) error {
	if token == "" {
		return ErrInvalidToken
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	}
	if t.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.config.Issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
