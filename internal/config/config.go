package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/pitwall/internal/security"
)

// DefaultConfigPath is where the server looks for a config file when -config
// is not given. A missing file at this path is not an error.
const DefaultConfigPath = "config/pitwall.json"

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

const (
	defaultDriver     = DriverMySQL
	defaultHost       = "localhost"
	defaultPort       = 3306
	defaultUser       = "root"
	defaultDatabase   = "F1"
	defaultUserHost   = "localhost"
	defaultSQLitePath = "pitwall.db"
	maxFileSize       = 1 * 1024 * 1024
)

// DatabaseConfig holds the connection settings. Fields omitted from the JSON
// file fall back to the values returned by the Get* methods, so partial
// configs are safe.
type DatabaseConfig struct {
	Driver   *string `json:"driver,omitempty"`
	Host     *string `json:"host,omitempty"`
	Port     *int    `json:"port,omitempty"`
	User     *string `json:"user,omitempty"`
	Password *string `json:"password,omitempty"`
	Database *string `json:"database,omitempty"`

	// UserHost is the host part of accounts created from the admin section.
	UserHost *string `json:"user_host,omitempty"`

	// SQLitePath is only read when Driver is "sqlite".
	SQLitePath *string `json:"sqlite_path,omitempty"`
}

func ptrString(v string) *string { return &v }

// EmptyConfig returns a DatabaseConfig with every field unset.
func EmptyConfig() *DatabaseConfig {
	return &DatabaseConfig{}
}

// DevConfig points at a local embedded database, used by -dev and tests.
func DevConfig(path string) *DatabaseConfig {
	return &DatabaseConfig{
		Driver:     ptrString(DriverSQLite),
		SQLitePath: ptrString(path),
	}
}

// LoadConfig reads a DatabaseConfig from a JSON file. The path must have a
// .json extension and the file must be under 1MB.
func LoadConfig(path string) (*DatabaseConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists and otherwise returns an empty
// config, so that a fresh checkout runs against the built-in defaults.
func LoadOrDefault(path string) (*DatabaseConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return EmptyConfig(), nil
	}
	return LoadConfig(path)
}

// Validate checks the values that are spliced into statements or DSNs.
func (c *DatabaseConfig) Validate() error {
	switch d := c.GetDriver(); d {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("driver must be %q or %q, got %q", DriverMySQL, DriverSQLite, d)
	}
	if p := c.GetPort(); p < 1 || p > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", p)
	}
	if err := security.ValidateIdentifier("database", c.GetDatabase()); err != nil {
		return err
	}
	if c.GetHost() == "" {
		return fmt.Errorf("host must not be empty")
	}
	if err := security.ValidateHost(c.GetUserHost()); err != nil {
		return err
	}
	if c.GetDriver() == DriverSQLite && c.GetSQLitePath() == "" {
		return fmt.Errorf("sqlite_path must not be empty")
	}
	return nil
}

func (c *DatabaseConfig) GetDriver() string {
	if c.Driver == nil {
		return defaultDriver
	}
	return *c.Driver
}

func (c *DatabaseConfig) GetHost() string {
	if c.Host == nil {
		return defaultHost
	}
	return *c.Host
}

func (c *DatabaseConfig) GetPort() int {
	if c.Port == nil {
		return defaultPort
	}
	return *c.Port
}

func (c *DatabaseConfig) GetUser() string {
	if c.User == nil {
		return defaultUser
	}
	return *c.User
}

// GetPassword defaults to the empty password of a stock local install.
func (c *DatabaseConfig) GetPassword() string {
	if c.Password == nil {
		return ""
	}
	return *c.Password
}

func (c *DatabaseConfig) GetDatabase() string {
	if c.Database == nil {
		return defaultDatabase
	}
	return *c.Database
}

func (c *DatabaseConfig) GetUserHost() string {
	if c.UserHost == nil {
		return defaultUserHost
	}
	return *c.UserHost
}

func (c *DatabaseConfig) GetSQLitePath() string {
	if c.SQLitePath == nil {
		return defaultSQLitePath
	}
	return *c.SQLitePath
}

// Label is a short, password-free description for logs and the debug console.
func (c *DatabaseConfig) Label() string {
	if c.GetDriver() == DriverSQLite {
		return "sqlite://" + c.GetSQLitePath()
	}
	return fmt.Sprintf("mysql://%s@%s:%d/%s", c.GetUser(), c.GetHost(), c.GetPort(), c.GetDatabase())
}
