package model

import "time"

// User represents a fleet account as stored in the `users` table.
// PasswordHash holds the SHA-256 hex digest computed at the HTTP edge; the
// store layer never sees a plain password.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address (lookup key).
//  FirstName    – the user's first name.
//  Surname      – the user's surname.
//  PasswordHash – SHA-256 hex digest of the password.
type User struct {
	ID           uint64 // users.id
	Email        string // users.email
	FirstName    string // users.first_name
	Surname      string // users.surname
	PasswordHash string // users.password_hash
}

// Session models a row in the `sessions` table.  The token is a 128-bit
// random identifier issued on signin/signup; a session is never updated and
// logically dies when ExpiresAt passes (expired rows are rejected at lookup,
// not garbage-collected).
//
// Fields:
//  Token      – hex-encoded random identifier, primary key.
//  UserID     – owner of the session.
//  CreatedAt  – timestamp of creation.
//  ExpiresAt  – fixed expiry (creation time + 7 days, not sliding).
//  ClientInfo – free-form description of the client that signed in.
type Session struct {
	Token      string
	UserID     uint64
	CreatedAt  time.Time
	ExpiresAt  time.Time
	ClientInfo string
}
