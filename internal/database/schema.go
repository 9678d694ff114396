package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrSchemaProvision wraps any failure while building the database or its
// tables.  Provisioning runs once at first boot; callers must surface this
// error instead of retrying blindly against a half-built schema.
var ErrSchemaProvision = errors.New("schema provisioning failed")

// schemaDDL creates every table of the mower store.  Statements are ordered
// so that foreign-key targets exist before their referrers, and each uses IF
// NOT EXISTS so a second run is a no-op.
//
// Coordinates are stored as decimal strings (see internal/geo); the seq_no
// column on both join tables records point order explicitly instead of
// relying on physical row order, which MySQL does not guarantee.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(50) NOT NULL,
		first_name VARCHAR(50) NOT NULL,
		surname VARCHAR(50) NOT NULL,
		password_hash CHAR(64) NOT NULL,
		UNIQUE KEY uq_users_email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token CHAR(32) NOT NULL PRIMARY KEY,
		user_id INT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		expires_at DATETIME NOT NULL,
		client_info TEXT,
		FOREIGN KEY (user_id) REFERENCES users (id)
	)`,
	`CREATE TABLE IF NOT EXISTS points (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		x VARCHAR(24) NOT NULL,
		y VARCHAR(24) NOT NULL,
		z VARCHAR(24) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS areas (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		owner_id INT UNSIGNED NOT NULL,
		name VARCHAR(100) NOT NULL,
		notes TEXT NULL,
		FOREIGN KEY (owner_id) REFERENCES users (id)
	)`,
	`CREATE TABLE IF NOT EXISTS nogo_zones (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		area_id INT UNSIGNED NOT NULL,
		FOREIGN KEY (area_id) REFERENCES areas (id)
	)`,
	`CREATE TABLE IF NOT EXISTS area_points (
		point_id INT UNSIGNED NOT NULL,
		area_id INT UNSIGNED NOT NULL,
		seq_no INT UNSIGNED NOT NULL,
		PRIMARY KEY (point_id, area_id),
		FOREIGN KEY (point_id) REFERENCES points (id),
		FOREIGN KEY (area_id) REFERENCES areas (id)
	)`,
	`CREATE TABLE IF NOT EXISTS nogo_points (
		point_id INT UNSIGNED NOT NULL,
		nogo_id INT UNSIGNED NOT NULL,
		seq_no INT UNSIGNED NOT NULL,
		PRIMARY KEY (point_id, nogo_id),
		FOREIGN KEY (point_id) REFERENCES points (id),
		FOREIGN KEY (nogo_id) REFERENCES nogo_zones (id)
	)`,
	`CREATE TABLE IF NOT EXISTS mowers (
		iqn VARCHAR(50) NOT NULL PRIMARY KEY,
		vpn_ip VARCHAR(15) NOT NULL,
		owner_id INT UNSIGNED NOT NULL,
		FOREIGN KEY (owner_id) REFERENCES users (id)
	)`,
	`CREATE TABLE IF NOT EXISTS telemetry (
		mower VARCHAR(50) NOT NULL,
		recv_at DATETIME NOT NULL,
		point_id INT UNSIGNED NOT NULL,
		PRIMARY KEY (mower, recv_at),
		FOREIGN KEY (mower) REFERENCES mowers (iqn),
		FOREIGN KEY (point_id) REFERENCES points (id)
	)`,
}

// EnsureSchema brings the selected database to "all tables present".  It is
// idempotent over a complete schema.  A failure partway through leaves the
// schema half-built; the wrapped ErrSchemaProvision tells the caller this is
// fatal rather than retryable.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %v", ErrSchemaProvision, err)
		}
	}
	return nil
}
