// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/muhammadolammi/careernavigator/internal/gemini"
	"github.com/muhammadolammi/careernavigator/internal/storage"
)

type Config struct {
	GoogleAPIKey   string
	FastModel      string
	ProModel       string
	Port           int
	SessionSecret  string
	AllowedOrigins []string
	DBURL          string
	RabbitMQURL    string
	R2             *storage.R2Config
	ContentFile    string
	LogLevel       string
}

// Load reads a .env file when present, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv and validates it.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		GoogleAPIKey:  get("GOOGLE_API_KEY", ""),
		FastModel:     get("GEMINI_FAST_MODEL", gemini.DefaultFastModel),
		ProModel:      get("GEMINI_PRO_MODEL", gemini.DefaultProModel),
		SessionSecret: get("SESSION_SECRET", ""),
		DBURL:         get("DB_URL", ""),
		RabbitMQURL:   get("RABBITMQ_URL", ""),
		ContentFile:   get("CONTENT_FILE", ""),
		LogLevel:      get("LOG_LEVEL", "info"),
	}

	port, err := strconv.Atoi(get("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %q", getenv("PORT"))
	}
	cfg.Port = port

	for _, origin := range strings.Split(get("ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	r2 := storage.R2Config{
		AccountID: get("R2_ACCCOUNT_ID", ""),
		Bucket:    get("R2_BUCKET", ""),
		AccessKey: get("R2_ACCESS_KEY", ""),
		SecretKey: get("R2_SECRET_KEY", ""),
	}
	if r2 != (storage.R2Config{}) {
		cfg.R2 = &r2
	}

	return cfg, cfg.Validate()
}

// Validate reports the first missing required value.
func (c Config) Validate() error {
	if c.GoogleAPIKey == "" {
		return fmt.Errorf("empty GOOGLE_API_KEY in environment")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("empty SESSION_SECRET in environment")
	}
	if c.R2 != nil {
		for key, v := range map[string]string{
			"R2_ACCCOUNT_ID": c.R2.AccountID,
			"R2_BUCKET":      c.R2.Bucket,
			"R2_ACCESS_KEY":  c.R2.AccessKey,
			"R2_SECRET_KEY":  c.R2.SecretKey,
		} {
			if v == "" {
				return fmt.Errorf("empty %s in environment; R2 needs all four R2_* values", key)
			}
		}
	}
	return nil
}
