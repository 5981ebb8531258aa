package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "")
	t.Setenv("CORS_ORIGIN", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("COOKIE_SECURE", "")

	c := Load()

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, "8000", c.Port)
	assert.Equal(t, "mongo", c.StoreDriver)
	assert.Equal(t, 15*time.Minute, c.AccessTokenExpiry)
	assert.Equal(t, 240*time.Hour, c.RefreshTokenExpiry)
	assert.Equal(t, []string{"http://localhost:3000"}, c.AllowedOrigins)
	assert.True(t, c.CookieSecure)
	assert.False(t, c.RevokeSessionsOnPasswordChange)
	assert.Empty(t, c.AllowedHost)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("HOST", "https://api.example.com:443/base")
	t.Setenv("ACCESS_TOKEN_SECRET", "a")
	t.Setenv("REFRESH_TOKEN_SECRET", "r")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "1m")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "3m")
	t.Setenv("CORS_ORIGIN", "https://a.com, https://b.com ,https://A.com")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("REVOKE_SESSIONS_ON_PASSWORD_CHANGE", "true")

	c := Load()

	assert.True(t, c.IsProduction())
	assert.Equal(t, "api.example.com", c.AllowedHost)
	assert.Equal(t, time.Minute, c.AccessTokenExpiry)
	assert.Equal(t, 3*time.Minute, c.RefreshTokenExpiry)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, c.AllowedOrigins)
	assert.False(t, c.CookieSecure)
	assert.Equal(t, int64(1024), c.MaxUploadBytes)
	assert.True(t, c.RevokeSessionsOnPasswordChange)
}

func TestValidate(t *testing.T) {
	valid := Config{
		StoreDriver:        "mongo",
		AccessTokenSecret:  "a",
		RefreshTokenSecret: "r",
		AccessTokenExpiry:  time.Minute,
		RefreshTokenExpiry: time.Hour,
	}
	require.NoError(t, valid.Validate())

	missing := valid
	missing.RefreshTokenSecret = ""
	assert.Error(t, missing.Validate())

	same := valid
	same.RefreshTokenSecret = "a"
	assert.Error(t, same.Validate())

	badDriver := valid
	badDriver.StoreDriver = "sqlite"
	assert.Error(t, badDriver.Validate())

	prodMemory := valid
	prodMemory.Environment = "production"
	prodMemory.StoreDriver = "memory"
	assert.Error(t, prodMemory.Validate())
}
