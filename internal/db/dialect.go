package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/banshee-data/pitwall/internal/config"
	"github.com/banshee-data/pitwall/internal/security"
)

// ErrUnsupported is wrapped by a CommandError when the backend has no
// equivalent of the requested operation.
var ErrUnsupported = errors.New("not supported by this backend")

// Dialect hides the differences between the production MySQL server and the
// embedded SQLite backend.
type Dialect interface {
	// Name is the config driver name.
	Name() string
	// DriverName returns an SQL expression for the full name of the driver
	// whose id is idExpr.
	DriverName(idExpr string) string
	// Call runs a stored procedure inside tx.
	Call(ctx context.Context, tx *sql.Tx, name string, args []any) error
	// CreateUser creates an account and grants it one privilege on database.
	CreateUser(ctx context.Context, tx *sql.Tx, grant UserGrant) error
}

// UserGrant is a validated account creation request.
type UserGrant struct {
	Username  string
	Password  string
	Host      string
	Database  string
	Privilege security.Privilege
}

func dialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverMySQL:
		return mysqlDialect{}, nil
	case config.DriverSQLite:
		return sqliteDialect{routines: defaultRoutines()}, nil
	}
	return nil, fmt.Errorf("unknown driver %q", driver)
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return config.DriverMySQL }

// DriverName uses the getDriverFullName function defined on the server.
func (mysqlDialect) DriverName(idExpr string) string {
	return "getDriverFullName(" + idExpr + ")"
}

func (mysqlDialect) Call(ctx context.Context, tx *sql.Tx, name string, args []any) error {
	_, err := tx.ExecContext(ctx, callStatement(name, len(args)), args...)
	return err
}

// CreateUser splices only allow-listed identifiers; the password is a bound
// value, escaped by the driver's client-side interpolation.
func (mysqlDialect) CreateUser(ctx context.Context, tx *sql.Tx, grant UserGrant) error {
	create, grantStmt := userStatements(grant)
	if _, err := tx.ExecContext(ctx, create, grant.Password); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, grantStmt); err != nil {
		return fmt.Errorf("grant %s: %w", grant.Privilege, err)
	}
	return nil
}

// callStatement builds "CALL name(?, ?, ...)" for n positional parameters.
// name must already have passed security.ValidateIdentifier.
func callStatement(name string, n int) string {
	placeholders := make([]string, n)
	for i := range placeholders {
		placeholders[i] = "?"
	}
	return fmt.Sprintf("CALL %s(%s)", name, strings.Join(placeholders, ", "))
}

func userStatements(grant UserGrant) (create, grantStmt string) {
	account := fmt.Sprintf("'%s'@'%s'", grant.Username, grant.Host)
	create = fmt.Sprintf("CREATE USER IF NOT EXISTS %s IDENTIFIED BY ?", account)
	grantStmt = fmt.Sprintf("GRANT %s ON %s.* TO %s", grant.Privilege, security.QuoteIdentifier(grant.Database), account)
	return create, grantStmt
}

type sqliteDialect struct {
	routines map[string]routine
}

func (sqliteDialect) Name() string { return config.DriverSQLite }

func (sqliteDialect) DriverName(idExpr string) string {
	return fmt.Sprintf("(SELECT dn.Forename || ' ' || dn.Surname FROM Drivers dn WHERE dn.Driver_ID = %s)", idExpr)
}

func (d sqliteDialect) Call(ctx context.Context, tx *sql.Tx, name string, args []any) error {
	r, ok := d.routines[name]
	if !ok {
		return fmt.Errorf("PROCEDURE %s does not exist", name)
	}
	if len(args) != r.arity {
		return fmt.Errorf("incorrect number of arguments for PROCEDURE %s; expected %d, got %d", name, r.arity, len(args))
	}
	ints := make([]int64, len(args))
	for i, a := range args {
		n, err := toInt64(a)
		if err != nil {
			return fmt.Errorf("argument %d of %s: %w", i+1, name, err)
		}
		ints[i] = n
	}
	return r.fn(ctx, tx, ints)
}

func (sqliteDialect) CreateUser(context.Context, *sql.Tx, UserGrant) error {
	return fmt.Errorf("user management: %w", ErrUnsupported)
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	}
	return 0, fmt.Errorf("expected an integer, got %T", v)
}
