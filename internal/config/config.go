package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port int

	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	RedisPassword string

	JWTAccessSecret  string
	JWTAccessTTL     time.Duration
	JWTRefreshSecret string
	JWTRefreshTTL    time.Duration

	AuthCodeExpiry        time.Duration
	AuthCodeSweepInterval time.Duration

	// Code issuing is throttled only when a cooldown or a window maximum
	// is configured.
	CodeResendCooldown time.Duration
	CodeWindow         time.Duration
	CodeWindowMax      int
	BcryptCost         int

	Mail Mail

	CORSOrigins        []string
	RateLimitPerMinute int
	ModeratorEmails    []string
}

// Mail holds SMTP settings. When the OAuth2 fields are set the transport
// authenticates with XOAUTH2 against Gmail instead of a password.
type Mail struct {
	From         string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	OAuthClientID     string
	OAuthClientSecret string
	OAuthRefreshToken string
	OAuthEmail        string
}

func (m Mail) Enabled() bool {
	return m.SMTPHost != ""
}

func (m Mail) UsesOAuth() bool {
	return m.OAuthClientID != "" && m.OAuthRefreshToken != ""
}

var ErrMissingJWTSecrets = errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set")

// Load reads .env (if present) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:                  3000,
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		MongoURI:              os.Getenv("MONGO_URI"),
		MongoDatabase:         "marketplace",
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		JWTAccessSecret:       os.Getenv("JWT_ACCESS_SECRET"),
		JWTAccessTTL:          15 * time.Minute,
		JWTRefreshSecret:      os.Getenv("JWT_REFRESH_SECRET"),
		JWTRefreshTTL:         7 * 24 * time.Hour,
		AuthCodeExpiry:        10 * time.Minute,
		AuthCodeSweepInterval: time.Hour,
		CodeWindow:            time.Hour,
		BcryptCost:            10,
		Mail: Mail{
			From:              os.Getenv("MAIL_FROM"),
			SMTPHost:          os.Getenv("SMTP_HOST"),
			SMTPPort:          465,
			SMTPUser:          os.Getenv("SMTP_USER"),
			SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
			OAuthClientID:     os.Getenv("CLIENT_ID"),
			OAuthClientSecret: os.Getenv("CLIENT_SECRET"),
			OAuthRefreshToken: os.Getenv("REFRESH_TOKEN"),
			OAuthEmail:        os.Getenv("EMAIL"),
		},
		CORSOrigins:        []string{"*"},
		RateLimitPerMinute: 60,
	}

	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		cfg.MongoDatabase = v
	}

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p < 65536 {
			cfg.Port = p
		}
	}

	setDuration(&cfg.JWTAccessTTL, "JWT_EXPIRATION_TIME")
	setDuration(&cfg.JWTRefreshTTL, "JWT_REFRESH_EXPIRATION_TIME")
	setDuration(&cfg.AuthCodeExpiry, "AUTH_CODE_EXPIRY")
	setDuration(&cfg.AuthCodeSweepInterval, "AUTH_CODE_SWEEP_INTERVAL")
	setDuration(&cfg.CodeResendCooldown, "CODE_RESEND_COOLDOWN")
	setDuration(&cfg.CodeWindow, "CODE_WINDOW")

	setPositiveInt(&cfg.CodeWindowMax, "CODE_WINDOW_MAX")
	setPositiveInt(&cfg.BcryptCost, "BCRYPT_COST")
	setPositiveInt(&cfg.Mail.SMTPPort, "SMTP_PORT")
	setPositiveInt(&cfg.RateLimitPerMinute, "RATE_LIMIT_PER_MINUTE")

	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.OAuthEmail
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.SMTPUser
	}

	if v := splitList(os.Getenv("CORS_ORIGINS")); len(v) > 0 {
		cfg.CORSOrigins = v
	}
	cfg.ModeratorEmails = splitList(strings.ToLower(os.Getenv("MODERATOR_EMAILS")))

	return cfg
}

func (c Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c Config) Validate() error {
	if c.JWTAccessSecret == "" || c.JWTRefreshSecret == "" {
		return ErrMissingJWTSecrets
	}
	return nil
}

// ParseDuration accepts Go duration syntax or a bare integer of minutes.
func ParseDuration(v string) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n <= 0 {
			return 0, false
		}
		return time.Duration(n) * time.Minute, true
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func setDuration(dst *time.Duration, key string) {
	if d, ok := ParseDuration(os.Getenv(key)); ok {
		*dst = d
	}
}

func setPositiveInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
