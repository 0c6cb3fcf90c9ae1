package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Env  string
	Port int

	Store        string
	DBURL        string
	DBMaxConns   int32
	StoreTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RegisterRateLimit  int
	RegisterRateWindow time.Duration

	CORSOrigins  []string
	MaxBodyBytes int64

	OTelEnabled     bool
	OTelEndpoint    string
	OTelServiceName string
	OTelSampleRatio float64
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory.
func Load() (Config, error) {
	_ = godotenv.Load()

	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		Env:  v.GetString("APP_ENV"),
		Port: v.GetInt("PORT"),

		Store:        strings.ToLower(strings.TrimSpace(v.GetString("STORE"))),
		DBURL:        v.GetString("DATABASE_URL"),
		DBMaxConns:   v.GetInt32("DB_MAX_CONNS"),
		StoreTimeout: v.GetDuration("STORE_TIMEOUT"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		RegisterRateLimit:  v.GetInt("REGISTER_RATE_LIMIT"),
		RegisterRateWindow: v.GetDuration("REGISTER_RATE_WINDOW"),

		CORSOrigins:  splitList(v.GetString("CORS_ORIGINS")),
		MaxBodyBytes: v.GetInt64("MAX_BODY_BYTES"),

		OTelEnabled:     v.GetBool("OTEL_ENABLED"),
		OTelEndpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTelServiceName: v.GetString("OTEL_SERVICE_NAME"),
		OTelSampleRatio: v.GetFloat64("OTEL_SAMPLE_RATIO"),
	}

	if cfg.DBURL == "" {
		cfg.DBURL = buildDBURL(v)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("PORT", 8080)

	v.SetDefault("STORE", StorePostgres)
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "eventreg")
	v.SetDefault("DB_PASSWORD", "eventreg")
	v.SetDefault("DB_NAME", "eventreg")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("STORE_TIMEOUT", "3s")

	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REGISTER_RATE_LIMIT", 20)
	v.SetDefault("REGISTER_RATE_WINDOW", "1m")

	v.SetDefault("MAX_BODY_BYTES", 1<<20)

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_SERVICE_NAME", "eventreg")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)
}

func buildDBURL(v *viper.Viper) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(v.GetString("DB_USER"), v.GetString("DB_PASSWORD")),
		Host:     v.GetString("DB_HOST") + ":" + v.GetString("DB_PORT"),
		Path:     "/" + v.GetString("DB_NAME"),
		RawQuery: "sslmode=" + url.QueryEscape(v.GetString("DB_SSLMODE")),
	}

	return u.String()
}

func (c Config) Validate() error {
	var errs []error

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.Store != StorePostgres && c.Store != StoreMemory {
		errs = append(errs, fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.RegisterRateLimit < 0 {
		errs = append(errs, errors.New("REGISTER_RATE_LIMIT must not be negative"))
	}
	if c.RegisterRateLimit > 0 && c.RegisterRateWindow <= 0 {
		errs = append(errs, errors.New("REGISTER_RATE_WINDOW must be positive when rate limiting is on"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
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
