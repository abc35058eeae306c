package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the API server.
type Config struct {
	Port       string
	AppEnv     string
	GinMode    string
	LogLevel   string
	DBPath     string
	DBLogLevel string

	JWTSecret     string
	JWTIssuer     string
	JWTAudience   string
	SessionTTL    time.Duration
	SessionCookie string
	CookieSecure  bool

	ClientURL   string
	CORSOrigins []string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	ResetMaxRequests int
	ResetWindow      time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8008")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_PATH", "trackit.db")
	v.SetDefault("DB_LOG_LEVEL", "warn")

	v.SetDefault("JWT_SECRET", "development-insecure-secret-change-me")
	v.SetDefault("JWT_ISSUER", "trackit-api")
	v.SetDefault("JWT_AUDIENCE", "trackit-clients")
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("SESSION_COOKIE", "TrackIt")
	v.SetDefault("COOKIE_SECURE", false)

	v.SetDefault("CLIENT_URL", "http://localhost:5173")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")

	v.SetDefault("RESET_MAX_REQUESTS", 3)
	v.SetDefault("RESET_WINDOW", 10*time.Minute)
}

// Load reads an optional .env file and then the process environment.
// Missing .env is not an error; every key has a default.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:       v.GetString("PORT"),
		AppEnv:     v.GetString("APP_ENV"),
		GinMode:    v.GetString("GIN_MODE"),
		LogLevel:   v.GetString("LOG_LEVEL"),
		DBPath:     v.GetString("DB_PATH"),
		DBLogLevel: v.GetString("DB_LOG_LEVEL"),

		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTIssuer:     v.GetString("JWT_ISSUER"),
		JWTAudience:   v.GetString("JWT_AUDIENCE"),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		SessionCookie: v.GetString("SESSION_COOKIE"),
		CookieSecure:  v.GetBool("COOKIE_SECURE"),

		ClientURL:   strings.TrimRight(v.GetString("CLIENT_URL"), "/"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),

		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetString("SMTP_PORT"),
		SMTPUsername: v.GetString("SMTP_USERNAME"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),
		SMTPFrom:     v.GetString("SMTP_FROM"),

		ResetMaxRequests: v.GetInt("RESET_MAX_REQUESTS"),
		ResetWindow:      v.GetDuration("RESET_WINDOW"),
	}

	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUsername
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// IsDevelopment reports whether the server runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "" || c.AppEnv == "development"
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
