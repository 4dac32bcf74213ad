package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/security"
)

// Table is a fully materialised query result. Column order and row order are
// the order the database returned them in.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// EmptyTable returns a table with no columns and no rows. It is what
// RunQuery hands back when the query fails.
func EmptyTable() *Table {
	return &Table{Columns: []string{}, Rows: [][]any{}}
}

// Empty reports whether the table holds no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// ColumnIndex returns the position of the named column or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at row i in the named column.
func (t *Table) Value(i int, column string) (any, bool) {
	idx := t.ColumnIndex(column)
	if idx < 0 || i < 0 || i >= len(t.Rows) {
		return nil, false
	}
	return t.Rows[i][idx], true
}

// QueryError is returned by RunQuery when a read fails.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return "query failed: " + e.Err.Error()
}

func (e *QueryError) Unwrap() error { return e.Err }

// Message is the text shown to the user.
func (e *QueryError) Message() string {
	return "SQL Error: " + driverMessage(e.Err)
}

// CommandError is returned when a stored procedure or administrative
// statement fails. Nothing is retried.
type CommandError struct {
	Procedure string
	Err       error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Procedure, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Message is the text shown to the user.
func (e *CommandError) Message() string {
	return "Database Error: " + driverMessage(e.Err)
}

// driverMessage prefers the server's own text for MySQL errors, which is what
// an operator recognises from the mysql client.
func driverMessage(err error) string {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Message
	}
	return err.Error()
}

// RunQuery executes a read-only statement with bound parameters and returns
// every row. On failure it returns an empty table together with a
// *QueryError; it never panics.
func (db *DB) RunQuery(ctx context.Context, query string, args ...any) (*Table, error) {
	table, err := db.runQuery(ctx, query, args...)
	if err != nil {
		monitoring.Logf("query failed: %v", err)
		return EmptyTable(), &QueryError{Query: query, Err: err}
	}
	return table, nil
}

func (db *DB) runQuery(ctx context.Context, query string, args ...any) (table *Table, err error) {
	defer recoverUnavailable(&err)

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	table = &Table{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i := range values {
			values[i] = normalizeValue(values[i], types[i].DatabaseTypeName())
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// normalizeValue turns the raw bytes MySQL hands back for most columns into
// numbers or strings, so tables encode the same way whichever backend served
// them.
func normalizeValue(v any, dbType string) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	s := string(b)
	switch strings.ToUpper(dbType) {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT", "YEAR":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case "DECIMAL", "FLOAT", "DOUBLE", "REAL", "NUMERIC":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// CallProcedure invokes a named server-side routine with positional
// parameters inside a transaction and commits it. On failure the transaction
// is rolled back and a *CommandError returned.
func (db *DB) CallProcedure(ctx context.Context, name string, args ...any) error {
	if err := security.ValidateIdentifier("procedure", name); err != nil {
		return &CommandError{Procedure: name, Err: err}
	}
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		return db.dialect.Call(ctx, tx, name, args)
	})
	if err != nil {
		monitoring.Logf("procedure %s failed: %v", name, err)
		return &CommandError{Procedure: name, Err: err}
	}
	monitoring.Logf("procedure %s%v committed", name, args)
	return nil
}

// recoverUnavailable turns the nil-pointer panic raised by a nil *DB (or
// one with no pool) into an error.
func recoverUnavailable(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("database unavailable: %v", r)
	}
}

// withTx runs fn on a connection acquired for this unit of work only. The
// transaction is rolled back when fn fails or panics, before the connection
// is released.
func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	defer recoverUnavailable(&err)

	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			rollback(tx)
			err = fmt.Errorf("routine panicked: %v", r)
		}
	}()

	if err := fn(tx); err != nil {
		rollback(tx)
		return err
	}
	return tx.Commit()
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		monitoring.Logf("rollback failed: %v", err)
	}
}
