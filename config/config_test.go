package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "GIN_MODE", "CLIENT_URL", "STORAGE_DRIVER", "DATABASE_URL",
		"MONGODB_URI", "MONGODB_DATABASE", "STORAGE_TIMEOUT", "LOG_LEVEL",
		"LOG_FORMAT", "SHUTDOWN_TIMEOUT", "STORAGE_MAX_OPEN_CONNS", "STORAGE_MAX_IDLE_CONNS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/deptcms?sslmode=disable")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "5000" || cfg.Server.Addr() != ":5000" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Server.Mode != "release" {
		t.Errorf("Mode = %q", cfg.Server.Mode)
	}
	if cfg.Storage.Driver != DriverPostgres {
		t.Errorf("Driver = %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Timeout != 30*time.Second || cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.Storage.Timeout, cfg.Server.ShutdownTimeout)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Log.Level != slog.LevelInfo || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoad_MissingConnectionString(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("error = %v, should name DATABASE_URL", err)
	}
}

func TestLoad_Mongo(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "mongo")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "MONGODB_URI") {
		t.Errorf("error = %v, want MONGODB_URI", err)
	}

	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.MongoDatabase != "deptcms" {
		t.Errorf("MongoDatabase = %q", cfg.Storage.MongoDatabase)
	}
}

func TestLoad_MemoryNeedsNoURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("CLIENT_URL", "http://a.example, http://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "http://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"STORAGE_DRIVER", "oracle", "STORAGE_DRIVER"},
		{"PORT", "http", "PORT"},
		{"LOG_FORMAT", "xml", "LOG_FORMAT"},
		{"LOG_LEVEL", "loud", "LOG_LEVEL"},
		{"STORAGE_TIMEOUT", "soon", "STORAGE_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("STORAGE_DRIVER", "memory")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(LogConfig{Level: slog.LevelWarn, Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "resource", "faculty")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, `"resource":"faculty"`) {
		t.Errorf("output = %q", out)
	}
}
