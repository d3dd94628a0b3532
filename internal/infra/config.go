package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv            string        `validate:"required,oneof=development production test"`
	Port              string        `validate:"required,numeric"`
	DatabaseURL       string        `validate:"required"`
	StoragePath       string        `validate:"required"`
	StorageBaseURL    string        `validate:"required,url"`
	GenerationBaseURL string        `validate:"required,url"`
	GenerationAPIKey  string
	BoardBaseURL      string        `validate:"omitempty,url"`
	BoardAPIToken     string
	LayoutFile        string
	PromptFields      []string      `validate:"min=1,dive,required"`
	Run               RunSettings
	HTTPReadTimeout   time.Duration `validate:"gt=0"`
	HTTPWriteTimeout  time.Duration `validate:"gte=0"`
	HTTPIdleTimeout   time.Duration `validate:"gt=0"`
	RateLimitPerMin   int           `validate:"gte=0"`
	CORSOrigins       []string      `validate:"dive,url"`
}

// RunSettings carries the orchestrator tunables.
type RunSettings struct {
	Concurrency  int           `validate:"gte=1"`
	PollInterval time.Duration `validate:"gte=0"`
	PollDelay    time.Duration `validate:"gte=0"`
	MaxPolls     int           `validate:"gte=1"`
	SubmitDelay  time.Duration `validate:"gte=0"`
	Variations   int           `validate:"gte=1"`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              port,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		StoragePath:       getEnv("STORAGE_PATH", "./data/assets"),
		StorageBaseURL:    getEnv("STORAGE_BASE_URL", "http://localhost:"+port+"/static"),
		GenerationBaseURL: getEnv("GENERATION_BASE_URL", "http://localhost:9000"),
		GenerationAPIKey:  strings.TrimSpace(os.Getenv("GENERATION_API_KEY")),
		BoardBaseURL:      getEnv("BOARD_BASE_URL", "https://api.miro.com"),
		BoardAPIToken:     strings.TrimSpace(os.Getenv("BOARD_API_TOKEN")),
		LayoutFile:        os.Getenv("LAYOUT_FILE"),
		PromptFields:      getEnvList("PROMPT_FIELDS", []string{"prompt"}),
		Run: RunSettings{
			Concurrency:  getEnvInt("RUN_CONCURRENCY", 5),
			PollInterval: getEnvDuration("RUN_POLL_INTERVAL_MS", 3000*time.Millisecond),
			PollDelay:    getEnvDuration("RUN_POLL_DELAY_MS", 500*time.Millisecond),
			MaxPolls:     getEnvInt("RUN_MAX_POLLS", 60),
			SubmitDelay:  getEnvDuration("RUN_SUBMIT_DELAY_MS", 500*time.Millisecond),
			Variations:   getEnvInt("RUN_VARIATIONS", 1),
		},
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 900)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSOrigins:      getEnvList("CORS_ALLOWED_ORIGINS", nil),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// BoardEnabled reports whether a board token was configured through the
// environment. The credential store may still provide one at runtime.
func (c *Config) BoardEnabled() bool {
	return c != nil && c.BoardAPIToken != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvDuration reads a millisecond count.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
