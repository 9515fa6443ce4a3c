package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Email    EmailConfig
	SMS      SMSConfig
	OTP      OTPConfig
	Auth     AuthConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Debug          bool
	LogPath        string
	BaseURL        string
	FrontendURL    string
	AllowedOrigins []string
	AutoMigrate    bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

type RedisConfig struct {
	URL string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type SMSConfig struct {
	Provider   string
	AccountSID string
	AuthToken  string
	From       string
}

type OTPConfig struct {
	ExpiryMinutes int
	Length        int
}

// AuthConfig holds the verification and throttling windows.
type AuthConfig struct {
	TokenExpiryMinutes      int
	ResetTokenExpiryMinutes int
	ResendLimit             int
	ResendWindowMinutes     int
	MaxFailedLogins         int
	LockoutMinutes          int
}

func (c OTPConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

func (c AuthConfig) TokenExpiry() time.Duration {
	return time.Duration(c.TokenExpiryMinutes) * time.Minute
}

func (c AuthConfig) ResetTokenExpiry() time.Duration {
	return time.Duration(c.ResetTokenExpiryMinutes) * time.Minute
}

func (c AuthConfig) ResendWindow() time.Duration {
	return time.Duration(c.ResendWindowMinutes) * time.Minute
}

func (c AuthConfig) Lockout() time.Duration {
	return time.Duration(c.LockoutMinutes) * time.Minute
}

func (c JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "estate-api")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("FRONTEND_URL", "http://localhost:3000")
	viper.SetDefault("AUTO_MIGRATE", true)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("SMTP_PORT", 465)
	viper.SetDefault("EMAIL_FROM", "Brints Estate <no-reply@localhost>")
	viper.SetDefault("SMS_PROVIDER", "log")
	viper.SetDefault("OTP_EXPIRY_MINUTES", 15)
	viper.SetDefault("OTP_LENGTH", 6)
	viper.SetDefault("TOKEN_EXPIRY_MINUTES", 15)
	viper.SetDefault("RESET_TOKEN_EXPIRY_MINUTES", 15)
	viper.SetDefault("RESEND_LIMIT", 3)
	viper.SetDefault("RESEND_WINDOW_MINUTES", 15)
	viper.SetDefault("MAX_FAILED_LOGINS", 5)
	viper.SetDefault("LOCKOUT_MINUTES", 15)

	viper.AutomaticEnv()

	// .env is optional; container deployments pass plain environment variables
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Name:           viper.GetString("APP_NAME"),
			Port:           viper.GetString("PORT"),
			Debug:          viper.GetBool("DEBUG"),
			LogPath:        viper.GetString("LOG_PATH"),
			BaseURL:        strings.TrimRight(viper.GetString("BASE_URL"), "/"),
			FrontendURL:    strings.TrimRight(viper.GetString("FRONTEND_URL"), "/"),
			AllowedOrigins: splitList(viper.GetString("ALLOWED_ORIGINS")),
			AutoMigrate:    viper.GetBool("AUTO_MIGRATE"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			URL: viper.GetString("REDIS_URL"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASS"),
			From:     viper.GetString("EMAIL_FROM"),
		},
		SMS: SMSConfig{
			Provider:   strings.ToLower(viper.GetString("SMS_PROVIDER")),
			AccountSID: viper.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:  viper.GetString("TWILIO_AUTH_TOKEN"),
			From:       viper.GetString("TWILIO_PHONE_NUMBER"),
		},
		OTP: OTPConfig{
			ExpiryMinutes: viper.GetInt("OTP_EXPIRY_MINUTES"),
			Length:        viper.GetInt("OTP_LENGTH"),
		},
		Auth: AuthConfig{
			TokenExpiryMinutes:      viper.GetInt("TOKEN_EXPIRY_MINUTES"),
			ResetTokenExpiryMinutes: viper.GetInt("RESET_TOKEN_EXPIRY_MINUTES"),
			ResendLimit:             viper.GetInt("RESEND_LIMIT"),
			ResendWindowMinutes:     viper.GetInt("RESEND_WINDOW_MINUTES"),
			MaxFailedLogins:         viper.GetInt("MAX_FAILED_LOGINS"),
			LockoutMinutes:          viper.GetInt("LOCKOUT_MINUTES"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{config.App.FrontendURL}
	}

	return config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
