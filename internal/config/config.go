package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the environment-provided settings of the splitter. Everything
// here is deployment plumbing; the operational settings (target account,
// percentage, ...) live encrypted in the database.
type Config struct {
	APIBaseURL       string `validate:"required,url"`
	OrganizationSlug string `validate:"required"`
	SecretKey        string `validate:"required"`
	DatabaseURL      string `validate:"required"`
	AppKey           string `validate:"required,min=16"`
	LogLevel         string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// win over it.
func Load() (*Config, error) {
	// Missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:       envOr("QONTO_API_BASE_URL", "https://thirdparty.qonto.com"),
		OrganizationSlug: os.Getenv("QONTO_ORGANIZATION_SLUG"),
		SecretKey:        os.Getenv("QONTO_SECRET_KEY"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		AppKey:           os.Getenv("APP_KEY"),
		LogLevel:         envOr("LOG_LEVEL", "info"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
