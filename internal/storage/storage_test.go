package storage

import (
	"context"
	"testing"
	"time"

	"github.com/deptsite/deptcms/config"
	"github.com/deptsite/deptcms/internal/core/schema"
)

func TestOpen(t *testing.T) {
	reg, err := schema.Default()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr bool
	}{
		{name: "memory", cfg: config.StorageConfig{Driver: config.DriverMemory, Timeout: time.Second}},
		{name: "sqlite", cfg: config.StorageConfig{Driver: config.DriverSQLite, DatabaseURL: ":memory:", Timeout: time.Second}},
		{name: "unknown driver", cfg: config.StorageConfig{Driver: "cassandra", Timeout: time.Second}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(context.Background(), &tt.cfg, reg.All())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer store.Close()
			if err := store.Ping(context.Background()); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}
