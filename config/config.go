package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	MailProviderLog  = "log"
	MailProviderSES  = "ses"
	MailProviderSMTP = "smtp"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string
	DBMaxOpenConns int
	JWTSecretKey   string
	ServerPort   int
	RedisURL     string
	LogLevel     slog.Level

	// Период фоновой сверки статусов турниров
	SweepInterval time.Duration

	MailProvider string
	MailFrom     string
	SES          SESConfig
	SMTP         SMTPConfig

	PublicURL          string
	CORSAllowedOrigins []string
}

type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	sweep := 1 * time.Minute
	if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
		sweep, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SWEEP_INTERVAL environment variable: %w", err)
		}
		if sweep < time.Second {
			return nil, fmt.Errorf("SWEEP_INTERVAL must be at least 1s, got %s", sweep)
		}
	}

	var level slog.Level
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:   dbURL,
		JWTSecretKey:  os.Getenv("JWT_SECRET_KEY"),
		ServerPort:    port,
		RedisURL:      os.Getenv("REDIS_URL"),
		LogLevel:      level,
		SweepInterval: sweep,
		MailProvider:  strings.ToLower(envOr("MAIL_PROVIDER", MailProviderLog)),
		MailFrom:      os.Getenv("MAIL_FROM"),
		SES: SESConfig{
			Region:          envOr("SES_REGION", "eu-central-1"),
			AccessKeyID:     os.Getenv("SES_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("SES_SECRET_ACCESS_KEY"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
		},
		PublicURL:          envOr("PUBLIC_URL", "http://localhost:3000"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	cfg.SMTP.Port, err = intEnv("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	cfg.DBMaxOpenConns, err = intEnv("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, err
	}
	if cfg.DBMaxOpenConns < 1 {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", cfg.DBMaxOpenConns)
	}

	if err := cfg.validateMail(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateServe проверяет параметры, нужные только HTTP-серверу.
func (c *Config) ValidateServe() error {
	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}
	return nil
}

func (c *Config) validateMail() error {
	switch c.MailProvider {
	case MailProviderLog:
		return nil
	case MailProviderSES:
		// ключи не обязательны: без них используется стандартная цепочка AWS
		if c.MailFrom == "" {
			return fmt.Errorf("MAIL_FROM is required for the ses mail provider")
		}
		return nil
	case MailProviderSMTP:
		if c.MailFrom == "" || c.SMTP.Host == "" {
			return fmt.Errorf("MAIL_FROM and SMTP_HOST are required for the smtp mail provider")
		}
		return nil
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q (expected log, ses or smtp)", c.MailProvider)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
