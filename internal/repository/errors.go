// Package repository implements the persistence layer of the mower fleet
// backend on top of database/sql.  The sentinel errors defined here let
// handlers map store failures onto HTTP responses without string matching.
// All of them mean "no mutation occurred": the caller can safely retry with
// corrected input or credentials.
package repository

import "errors"

// ErrDuplicateUser is returned when an account with the requested email
// already exists.  Handlers should translate this into an HTTP 409.
var ErrDuplicateUser = errors.New("email already exists")

// ErrInvalidCredentials is returned when no user matches the presented
// email/password-hash pair.  A wrong password and an unknown email are
// deliberately indistinguishable so the API cannot be used to enumerate
// accounts.  Handlers should translate this into an HTTP 401.
var ErrInvalidCredentials = errors.New("user not found or incorrect password")

// ErrInvalidSession is returned when a session token is unknown or its
// expiry has passed.  The caller must re-authenticate.  Handlers should
// translate this into an HTTP 401.
var ErrInvalidSession = errors.New("invalid or expired session")

// ErrDuplicateMower is returned when registering an IQN that is already in
// the fleet.  Handlers should translate this into an HTTP 409.
var ErrDuplicateMower = errors.New("mower already registered")
