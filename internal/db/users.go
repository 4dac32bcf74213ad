package db

import (
	"context"
	"database/sql"

	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/security"
)

// CreateUser creates a database account on the configured user host and
// grants it one privilege on the configured database. Username and
// privilege are checked against allow-lists before any statement is built;
// the password is only ever a bound value.
func (db *DB) CreateUser(ctx context.Context, username, password string, privilege string) error {
	const op = "create_user"

	if err := security.ValidateIdentifier("username", username); err != nil {
		return &CommandError{Procedure: op, Err: err}
	}
	priv, err := security.ParsePrivilege(privilege)
	if err != nil {
		return &CommandError{Procedure: op, Err: err}
	}

	grant := UserGrant{
		Username:  username,
		Password:  password,
		Host:      db.cfg.GetUserHost(),
		Database:  db.cfg.GetDatabase(),
		Privilege: priv,
	}
	if err := security.ValidateHost(grant.Host); err != nil {
		return &CommandError{Procedure: op, Err: err}
	}
	if err := security.ValidateIdentifier("database", grant.Database); err != nil {
		return &CommandError{Procedure: op, Err: err}
	}

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		return db.dialect.CreateUser(ctx, tx, grant)
	})
	if err != nil {
		monitoring.Logf("create user %q failed: %v", username, err)
		return &CommandError{Procedure: op, Err: err}
	}
	monitoring.Logf("created user %q@%q with %s on %s", username, grant.Host, priv, grant.Database)
	return nil
}
