package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	d, ok := ParseDuration("15")
	require.True(t, ok)
	assert.Equal(t, 15*time.Minute, d)

	_, ok = ParseDuration(" 7d ")
	assert.False(t, ok)

	d, ok = ParseDuration("168h")
	require.True(t, ok)
	assert.Equal(t, 7*24*time.Hour, d)

	for _, v := range []string{"", "0", "-5", "-1m", "abc"} {
		_, ok := ParseDuration(v)
		assert.False(t, ok, v)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("JWT_ACCESS_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "r")
	t.Setenv("JWT_EXPIRATION_TIME", "30m")
	t.Setenv("AUTH_CODE_EXPIRY", "5")
	t.Setenv("CODE_WINDOW_MAX", "0")
	t.Setenv("CODE_RESEND_COOLDOWN", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMTP_USER", "noreply@teklip.com")
	t.Setenv("MAIL_FROM", "")
	t.Setenv("EMAIL", "")
	t.Setenv("CORS_ORIGINS", "https://teklip.com, https://admin.teklip.com")
	t.Setenv("MODERATOR_EMAILS", " Mod@Teklip.com ,")

	cfg := Load()
	assert.Equal(t, ":8081", cfg.ListenAddr())
	assert.Equal(t, 30*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTRefreshTTL)
	assert.Equal(t, 5*time.Minute, cfg.AuthCodeExpiry)
	assert.Zero(t, cfg.CodeWindowMax)
	assert.Zero(t, cfg.CodeResendCooldown)
	assert.Equal(t, time.Hour, cfg.CodeWindow)
	assert.Equal(t, "noreply@teklip.com", cfg.Mail.From)
	assert.False(t, cfg.Mail.Enabled())
	assert.Equal(t, []string{"https://teklip.com", "https://admin.teklip.com"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"mod@teklip.com"}, cfg.ModeratorEmails)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresSecrets(t *testing.T) {
	assert.ErrorIs(t, Config{JWTAccessSecret: "a"}.Validate(), ErrMissingJWTSecrets)
}

func TestMailOAuth(t *testing.T) {
	m := Mail{SMTPHost: "smtp.gmail.com", OAuthClientID: "id", OAuthRefreshToken: "rt"}
	assert.True(t, m.Enabled())
	assert.True(t, m.UsesOAuth())
	assert.False(t, Mail{OAuthClientID: "id"}.UsesOAuth())
}

func TestLoadCodeLimits(t *testing.T) {
	t.Setenv("CODE_RESEND_COOLDOWN", "60s")
	t.Setenv("CODE_WINDOW", "30m")
	t.Setenv("CODE_WINDOW_MAX", "3")

	cfg := Load()
	assert.Equal(t, time.Minute, cfg.CodeResendCooldown)
	assert.Equal(t, 30*time.Minute, cfg.CodeWindow)
	assert.Equal(t, 3, cfg.CodeWindowMax)
}
