package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Log      LogConfig      `toml:"log"`
	Auth     AuthConfig     `toml:"auth"`
	Database DatabaseConfig `toml:"database"`
	Session  SessionConfig  `toml:"session"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Vision   VisionConfig   `toml:"vision"`
	OCR      OCRConfig      `toml:"ocr"`
	Document DocumentConfig `toml:"document"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret"`
	JWTExpireMinute int    `toml:"jwt_expire_minute"`
}

// DatabaseConfig holds the credential store connection string. An empty DSN
// leaves the auth screen reporting a configuration error.
type DatabaseConfig struct {
	DSN string `toml:"dsn"`
}

type SessionConfig struct {
	Backend           string `toml:"backend"`
	CookieName        string `toml:"cookie_name"`
	TTLMinutes        int    `toml:"ttl_minutes"`
	ArtifactTTLMinute int    `toml:"artifact_ttl_minutes"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type RabbitMQConfig struct {
	URL             string `toml:"url"`
	ConversionQueue string `toml:"conversion_queue"`
}

type VisionConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type OCRConfig struct {
	Languages []string `toml:"languages"`
}

type DocumentConfig struct {
	FontPath string `toml:"font_path"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

// VisionEnabled reports whether a vision service credential is configured.
func (c *Config) VisionEnabled() bool {
	return strings.TrimSpace(c.Vision.APIKey) != ""
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "ink2deck",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "debug",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Auth: AuthConfig{
			JWTSecret:       "change-me-in-production",
			JWTExpireMinute: 120,
		},
		Session: SessionConfig{
			Backend:           "memory",
			CookieName:        "ink2deck_session",
			TTLMinutes:        720,
			ArtifactTTLMinute: 30,
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		RabbitMQ: RabbitMQConfig{
			ConversionQueue: "ink2deck.conversion.events",
		},
		Vision: VisionConfig{
			BaseURL:        "https://generativelanguage.googleapis.com/v1beta/openai",
			Model:          "gemini-1.5-pro",
			TimeoutSeconds: 90,
		},
		OCR: OCRConfig{
			Languages: []string{"eng"},
		},
		Document: DocumentConfig{
			FontPath: "assets/fonts/DejaVuSansCondensed.ttf",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTExpireMinute = getEnvAsInt("JWT_EXPIRE_MINUTE", cfg.Auth.JWTExpireMinute)

	cfg.Database.DSN = getEnv("DATABASE_DSN", cfg.Database.DSN)

	cfg.Session.Backend = getEnv("SESSION_BACKEND", cfg.Session.Backend)
	cfg.Session.CookieName = getEnv("SESSION_COOKIE_NAME", cfg.Session.CookieName)
	cfg.Session.TTLMinutes = getEnvAsInt("SESSION_TTL_MINUTES", cfg.Session.TTLMinutes)
	cfg.Session.ArtifactTTLMinute = getEnvAsInt("SESSION_ARTIFACT_TTL_MINUTES", cfg.Session.ArtifactTTLMinute)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.ConversionQueue = getEnv("RABBITMQ_CONVERSION_QUEUE", cfg.RabbitMQ.ConversionQueue)

	cfg.Vision.BaseURL = getEnv("VISION_BASE_URL", cfg.Vision.BaseURL)
	cfg.Vision.APIKey = getEnvNonEmpty("VISION_API_KEY", cfg.Vision.APIKey)
	cfg.Vision.APIKey = getEnvNonEmpty("GEMINI_API_KEY", cfg.Vision.APIKey)
	cfg.Vision.Model = getEnv("VISION_MODEL", cfg.Vision.Model)
	cfg.Vision.TimeoutSeconds = getEnvAsInt("VISION_TIMEOUT_SECONDS", cfg.Vision.TimeoutSeconds)

	cfg.OCR.Languages = getEnvAsList("OCR_LANGUAGES", cfg.OCR.Languages)
	cfg.Document.FontPath = getEnv("DOCUMENT_FONT_PATH", cfg.Document.FontPath)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvNonEmpty ignores variables that are set but blank.
func getEnvNonEmpty(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
