package db

import (
	"compress/gzip"
	"database/sql"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"

	"github.com/banshee-data/pitwall/internal/config"
	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/security"
)

// DB is the gateway to the racing database. Every exported operation
// acquires its own connection from the pool and releases it before
// returning.
type DB struct {
	*sql.DB
	cfg     *config.DatabaseConfig
	dialect Dialect
}

// Open prepares a handle for cfg. No connection is made until the first
// operation, so an unreachable server surfaces as a QueryError or
// CommandError rather than a start-up failure.
func Open(cfg *config.DatabaseConfig) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dialect, err := dialectFor(cfg.GetDriver())
	if err != nil {
		return nil, err
	}

	var sqlDB *sql.DB
	switch cfg.GetDriver() {
	case config.DriverMySQL:
		sqlDB, err = sql.Open("mysql", mysqlDSN(cfg))
	case config.DriverSQLite:
		sqlDB, err = sql.Open("sqlite", sqliteDSN(cfg.GetSQLitePath()))
		if err == nil {
			// one writer; also keeps a :memory: database on a single connection
			sqlDB.SetMaxOpenConns(1)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Label(), err)
	}

	monitoring.Logf("using database %s", cfg.Label())
	return &DB{DB: sqlDB, cfg: cfg, dialect: dialect}, nil
}

// OpenDev opens an embedded database at path and brings its schema and
// sample data up to date.
func OpenDev(path string) (*DB, error) {
	db, err := Open(config.DevConfig(path))
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(MigrationsFS()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func mysqlDSN(cfg *config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.GetUser()
	mc.Passwd = cfg.GetPassword()
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.GetHost(), strconv.Itoa(cfg.GetPort()))
	mc.DBName = cfg.GetDatabase()
	// value positions in administrative DDL cannot be server-side placeholders
	mc.InterpolateParams = true
	mc.MultiStatements = false
	return mc.FormatDSN()
}

// sqliteDSN builds a file: URI. The path is percent-escaped so that '?' or
// '#' in a file name cannot reach the pragma list.
func sqliteDSN(path string) string {
	u := url.URL{
		Scheme:   "file",
		OmitHost: true,
		Path:     path,
		RawQuery: "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
	}
	return u.String()
}

// Dialect returns the backend-specific SQL helpers for this database.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Config returns the configuration the database was opened with.
func (db *DB) Config() *config.DatabaseConfig {
	return db.cfg
}

// AttachAdminRoutes mounts the debug index on mux with a live SQL console
// and, for the embedded backend, a backup download.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) error {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("failed to create tailsql server: %w", err)
	}
	tsql.SetDB(db.cfg.Label(), db.DB, &tailsql.DBOptions{
		Label: "Racing DB",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	if db.dialect.Name() == config.DriverSQLite {
		debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(db.handleBackup))
	}
	return nil
}

func (db *DB) handleBackup(w http.ResponseWriter, r *http.Request) {
	backupDir := os.TempDir()
	backupPath := filepath.Join(backupDir, fmt.Sprintf("pitwall-backup-%d.db", time.Now().Unix()))
	if err := security.ValidatePathWithinDirectory(backupPath, backupDir); err != nil {
		http.Error(w, fmt.Sprintf("Invalid backup path: %v", err), http.StatusInternalServerError)
		return
	}
	if _, err := db.ExecContext(r.Context(), "VACUUM INTO ?", backupPath); err != nil {
		http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
		return
	}

	backupFile, err := os.Open(backupPath)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
		return
	}
	defer func() {
		backupFile.Close()
		if err := os.Remove(backupPath); err != nil {
			monitoring.Logf("failed to remove backup file: %v", err)
		}
	}()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.gz", filepath.Base(backupPath)))
	w.Header().Set("Content-Type", "application/gzip")

	gzipWriter := gzip.NewWriter(w)
	defer gzipWriter.Close()
	if _, err := io.Copy(gzipWriter, backupFile); err != nil {
		monitoring.Logf("failed to write backup: %v", err)
	}
}
