package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/lo"

	"github.com/shlee-lab/telegram-simple-llm-bot/internal/domain"
	"github.com/shlee-lab/telegram-simple-llm-bot/internal/usecase"
)

// Config is built once at startup and only read afterwards.
type Config struct {
	TelegramToken  string        `env:"TELEGRAM_TOKEN" validate:"required"`
	GeminiAPIKey   string        `env:"GEMINI_API_KEY" validate:"required"`
	AllowedUserIDs string        `env:"ALLOWED_USER_IDS"`
	GeminiModel    string        `env:"GEMINI_MODEL,default=gemini-1.5-flash" validate:"required"`
	GeminiBaseURL  string        `env:"GEMINI_BASE_URL,default=https://generativelanguage.googleapis.com/v1beta/openai" validate:"required,url"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT,default=30s" validate:"gt=0"`
	PollTimeout    int           `env:"TELEGRAM_POLL_TIMEOUT,default=30" validate:"gte=0"`
	ShutdownGrace  time.Duration `env:"SHUTDOWN_GRACE,default=10s" validate:"gte=0"`
	LogLevel       string        `env:"LOG_LEVEL,default=INFO"`
	HealthAddr     string        `env:"HEALTH_ADDR,default=:8080"`
	OTLPEndpoint   string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// AllowList is parsed from AllowedUserIDs. Empty means open mode.
	AllowList usecase.AllowList
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report environment variable names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("env"), ",")
		return name
	})
	return v
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none)
// without overriding variables that are already set. A missing file is fine.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &domain.ConfigError{Key: ".env", Err: err}
	}
	return nil
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return Config{}, &domain.ConfigError{Key: "environment", Err: err}
	}
	return LoadFrom(es)
}

// LoadFrom reads the configuration from es. Every failure is a *domain.ConfigError.
func LoadFrom(es env.EnvSet) (Config, error) {
	var cfg Config
	if err := env.Unmarshal(es, &cfg); err != nil {
		return Config{}, &domain.ConfigError{Key: "environment", Err: err}
	}
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.GeminiAPIKey = strings.TrimSpace(cfg.GeminiAPIKey)

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return Config{}, &domain.ConfigError{Key: fe.Field(), Err: describe(fe)}
		}
		return Config{}, &domain.ConfigError{Key: "environment", Err: err}
	}

	ids, err := ParseAllowList(cfg.AllowedUserIDs)
	if err != nil {
		return Config{}, &domain.ConfigError{Key: "ALLOWED_USER_IDS", Err: err}
	}
	cfg.AllowList = ids
	return cfg, nil
}

func describe(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return errors.New("is required and must not be empty")
	case "url":
		return fmt.Errorf("%q is not a valid URL", fe.Value())
	case "gt", "gte":
		return fmt.Errorf("%v must be %s %s", fe.Value(), fe.Tag(), fe.Param())
	default:
		return fmt.Errorf("failed %q validation", fe.Tag())
	}
}

// ParseAllowList parses a comma-separated list of numeric user ids.
// Blank entries are skipped; any other non-integer entry is an error.
func ParseAllowList(raw string) (usecase.AllowList, error) {
	parts := lo.Compact(lo.Map(strings.Split(raw, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	}))
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: must be an integer", part)
		}
		ids = append(ids, id)
	}
	return usecase.NewAllowList(ids...), nil
}

// LogValue keeps credentials out of the logs.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("telegram_token", redact(c.TelegramToken)),
		slog.String("gemini_api_key", redact(c.GeminiAPIKey)),
		slog.Int("allowed_users", len(c.AllowList)),
		slog.String("gemini_model", c.GeminiModel),
		slog.Duration("llm_timeout", c.LLMTimeout),
		slog.Duration("shutdown_grace", c.ShutdownGrace),
		slog.String("health_addr", c.HealthAddr),
		slog.Bool("tracing", c.OTLPEndpoint != ""),
	)
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}
