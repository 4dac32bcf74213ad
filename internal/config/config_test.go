package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyConfig()

	if got := cfg.GetDriver(); got != DriverMySQL {
		t.Errorf("GetDriver() = %q, want %q", got, DriverMySQL)
	}
	if got := cfg.GetHost(); got != "localhost" {
		t.Errorf("GetHost() = %q, want localhost", got)
	}
	if got := cfg.GetPort(); got != 3306 {
		t.Errorf("GetPort() = %d, want 3306", got)
	}
	if got := cfg.GetUser(); got != "root" {
		t.Errorf("GetUser() = %q, want root", got)
	}
	if got := cfg.GetPassword(); got != "" {
		t.Errorf("GetPassword() = %q, want empty", got)
	}
	if got := cfg.GetDatabase(); got != "F1" {
		t.Errorf("GetDatabase() = %q, want F1", got)
	}
	if got := cfg.GetUserHost(); got != "localhost" {
		t.Errorf("GetUserHost() = %q, want localhost", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pitwall.json")

	testJSON := `{
  "host": "db.internal",
  "port": 3307,
  "user": "dashboard",
  "password": "s3cret",
  "database": "F1_2024"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetHost() != "db.internal" || cfg.GetPort() != 3307 {
		t.Errorf("unexpected host/port %s:%d", cfg.GetHost(), cfg.GetPort())
	}
	if cfg.GetUser() != "dashboard" || cfg.GetPassword() != "s3cret" {
		t.Errorf("unexpected credentials %s/%s", cfg.GetUser(), cfg.GetPassword())
	}
	if cfg.GetDatabase() != "F1_2024" {
		t.Errorf("GetDatabase() = %q", cfg.GetDatabase())
	}
	// omitted fields keep their defaults
	if cfg.GetDriver() != DriverMySQL {
		t.Errorf("GetDriver() = %q, want default", cfg.GetDriver())
	}
	if strings.Contains(cfg.Label(), "s3cret") {
		t.Errorf("Label() leaks the password: %s", cfg.Label())
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"wrong extension", write("pitwall.yaml", "{}"), ".json extension"},
		{"missing file", filepath.Join(tmpDir, "absent.json"), "failed to stat"},
		{"bad json", write("bad.json", "{"), "failed to parse"},
		{"unknown driver", write("driver.json", `{"driver":"postgres"}`), "driver must be"},
		{"port out of range", write("port.json", `{"port":70000}`), "port must be"},
		{"database injection", write("db.json", `{"database":"F1; DROP"}`), "invalid database"},
		{"empty sqlite path", write("sqlite.json", `{"driver":"sqlite","sqlite_path":""}`), "sqlite_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.GetDriver() != DriverMySQL {
		t.Errorf("expected default config, got driver %q", cfg.GetDriver())
	}
}

func TestDevConfig(t *testing.T) {
	cfg := DevConfig("dev.db")
	if cfg.GetDriver() != DriverSQLite {
		t.Errorf("GetDriver() = %q", cfg.GetDriver())
	}
	if cfg.Label() != "sqlite://dev.db" {
		t.Errorf("Label() = %q", cfg.Label())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}
