package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/openmow/mower-fleet/internal/model"
)

// SessionLength is the fixed lifetime of every session.  Expiry is absolute
// (created_at + 7 days), never extended by use.
const SessionLength = 7 * 24 * time.Hour

const mysqlErrDuplicate = 1062 // ER_DUP_ENTRY

// UserRepo owns user credential verification and session issuance.  Every
// successful CreateUser/AuthenticateUser call commits exactly one session
// row; nothing else mints sessions.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// CreateUser inserts the user row and mints their first session in a single
// transaction, so a crash can never leave an account with no way to sign in.
// The password arrives already hashed.  Returns the new session token and
// its expiry.
func (r *UserRepo) CreateUser(ctx context.Context, email, firstName, surname, passwordHash, clientInfo string) (string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", time.Time{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO users (email, first_name, surname, password_hash) VALUES (?,?,?,?)",
		email, firstName, surname, passwordHash)
	if err != nil {
		var merr *mysql.MySQLError
		if errors.As(err, &merr) && merr.Number == mysqlErrDuplicate {
			return "", time.Time{}, ErrDuplicateUser
		}
		return "", time.Time{}, err
	}

	token, expiresAt, err := mintSession(ctx, tx, email, passwordHash, clientInfo)
	if err != nil {
		return "", time.Time{}, err
	}
	if err := tx.Commit(); err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// AuthenticateUser verifies the (email, password_hash) pair and issues a new
// session.  Zero matching rows yields ErrInvalidCredentials regardless of
// which half was wrong.
func (r *UserRepo) AuthenticateUser(ctx context.Context, email, passwordHash, clientInfo string) (string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", time.Time{}, err
	}
	defer tx.Rollback()

	token, expiresAt, err := mintSession(ctx, tx, email, passwordHash, clientInfo)
	if err != nil {
		return "", time.Time{}, err
	}
	if err := tx.Commit(); err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// mintSession looks the user up by exact credential match and inserts one
// session row for them within tx.
func mintSession(ctx context.Context, tx *sql.Tx, email, passwordHash, clientInfo string) (string, time.Time, error) {
	var userID uint64
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM users WHERE email=? AND password_hash=? LIMIT 1",
		email, passwordHash).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}

	token, err := newSessionToken()
	if err != nil {
		return "", time.Time{}, err
	}
	// DATETIME has second precision; truncate so the expiry we return equals
	// the expiry we stored.
	expiresAt := time.Now().UTC().Add(SessionLength).Truncate(time.Second)

	_, err = tx.ExecContext(ctx,
		"INSERT INTO sessions (token, user_id, expires_at, client_info) VALUES (?,?,?,?)",
		token, userID, expiresAt, clientInfo)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// AuthenticateSession resolves a session token to its owning user.  Unknown
// tokens and expired sessions are both reported as ErrInvalidSession; the
// expiry comparison happens here, at lookup time, never trusted to have been
// checked elsewhere.
func (r *UserRepo) AuthenticateSession(ctx context.Context, token string) (model.User, error) {
	var (
		u         model.User
		expiresAt time.Time
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT u.id, u.email, u.first_name, u.surname, u.password_hash, s.expires_at
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.token=? LIMIT 1`,
		token).Scan(&u.ID, &u.Email, &u.FirstName, &u.Surname, &u.PasswordHash, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrInvalidSession
		}
		return model.User{}, err
	}
	if !time.Now().UTC().Before(expiresAt) {
		return model.User{}, ErrInvalidSession
	}
	return u, nil
}

// newSessionToken returns 16 bytes of cryptographic randomness, hex-encoded.
func newSessionToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
