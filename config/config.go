package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	CORS    CORSConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port            string        `validate:"required,numeric"`
	Mode            string        `validate:"oneof=debug release test"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

type StorageConfig struct {
	Driver        string        `validate:"oneof=postgres sqlite mongo memory"`
	DatabaseURL   string        `validate:"required_if=Driver postgres,required_if=Driver sqlite"`
	MongoURI      string        `validate:"required_if=Driver mongo"`
	MongoDatabase string        `validate:"required_if=Driver mongo"`
	Timeout       time.Duration `validate:"gt=0"`
	MaxOpenConns  int           `validate:"gte=1"`
	MaxIdleConns  int           `validate:"gte=0"`
}

type CORSConfig struct {
	// AllowedOrigins is parsed from a comma separated CLIENT_URL.
	AllowedOrigins []string `validate:"min=1,dive,required"`
}

type LogConfig struct {
	Level  slog.Level
	Format string `validate:"oneof=text json"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from the environment, loading a .env file first
// when one exists.
func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "5000"),
			Mode: getEnv("GIN_MODE", "release"),
		},
		Storage: StorageConfig{
			Driver:        strings.ToLower(getEnv("STORAGE_DRIVER", DriverPostgres)),
			DatabaseURL:   os.Getenv("DATABASE_URL"),
			MongoURI:      os.Getenv("MONGODB_URI"),
			MongoDatabase: getEnv("MONGODB_DATABASE", "deptcms"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CLIENT_URL", "http://localhost:3000")),
		},
		Log: LogConfig{
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
	}

	var err error
	if cfg.Server.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Storage.Timeout, err = getDuration("STORAGE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Storage.MaxOpenConns, err = getInt("STORAGE_MAX_OPEN_CONNS", 25); err != nil {
		return nil, err
	}
	if cfg.Storage.MaxIdleConns, err = getInt("STORAGE_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.Log.Level, err = parseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and reports every failing key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", envKey(fe.StructNamespace()), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

var envKeys = map[string]string{
	"Config.Server.Port":            "PORT",
	"Config.Server.Mode":            "GIN_MODE",
	"Config.Server.ShutdownTimeout": "SHUTDOWN_TIMEOUT",
	"Config.Storage.Driver":         "STORAGE_DRIVER",
	"Config.Storage.DatabaseURL":    "DATABASE_URL",
	"Config.Storage.MongoURI":       "MONGODB_URI",
	"Config.Storage.MongoDatabase":  "MONGODB_DATABASE",
	"Config.Storage.Timeout":        "STORAGE_TIMEOUT",
	"Config.Storage.MaxOpenConns":   "STORAGE_MAX_OPEN_CONNS",
	"Config.Storage.MaxIdleConns":   "STORAGE_MAX_IDLE_CONNS",
	"Config.CORS.AllowedOrigins":    "CLIENT_URL",
	"Config.Log.Format":             "LOG_FORMAT",
}

func envKey(namespace string) string {
	if i := strings.Index(namespace, "["); i >= 0 {
		namespace = namespace[:i]
	}
	if key, ok := envKeys[namespace]; ok {
		return key
	}
	return namespace
}

// SetupLogger builds the process logger and installs it as the slog
// default. Text output is colorized with tint.
func SetupLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.Level})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      cfg.Level,
			TimeFormat: time.DateTime,
			NoColor:    !isTerminal(w),
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return level, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
