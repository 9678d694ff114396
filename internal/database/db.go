package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
)

// MySQL server error numbers the facade reacts to.
const errBadDB = 1049 // ER_BAD_DB_ERROR: the target database does not exist

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn(user, pass, host, port, name))
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenOrProvision opens the named database, building it from scratch when it
// does not exist yet.  The recovery is a single guarded retry: only the
// "unknown database" server error triggers provisioning, and the reconnect
// is attempted exactly once.  Any other connection error propagates
// unchanged.
func OpenOrProvision(user, pass, host, port, name string, log zerolog.Logger) (*sql.DB, error) {
	db, err := Open(user, pass, host, port, name)
	if err == nil {
		return db, nil
	}
	var merr *mysql.MySQLError
	if !errors.As(err, &merr) || merr.Number != errBadDB {
		return nil, err
	}

	log.Info().Str("database", name).Msg("database missing, provisioning schema")
	if err := provision(user, pass, host, port, name); err != nil {
		return nil, err
	}

	db, err = Open(user, pass, host, port, name)
	if err != nil {
		return nil, fmt.Errorf("reconnect after provisioning: %w", err)
	}
	if err := EnsureSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Str("database", name).Msg("schema provisioned")
	return db, nil
}

// provision connects to the server without selecting a database and creates
// the named one.  IF NOT EXISTS keeps a lost race with another booting
// instance harmless.
func provision(user, pass, host, port, name string) error {
	admin, err := sql.Open("mysql", dsn(user, pass, host, port, ""))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaProvision, err)
	}
	defer admin.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := admin.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS `"+name+"` CHARACTER SET utf8mb4"); err != nil {
		return fmt.Errorf("%w: create database: %v", ErrSchemaProvision, err)
	}
	return nil
}

func dsn(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)
}
