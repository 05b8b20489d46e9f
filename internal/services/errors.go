package services

import (
	"errors"
	"net/http"
)

// User-facing messages. Clients match on these strings.
const (
	MsgMissingFields      = "Missing required field(s)"
	MsgUsernameTooShort   = "Username must be at least 6 characters in length"
	MsgUsernameTooLong    = "Username must be less than 128 characters in length"
	MsgUsernameCharset    = "Username must contain only letters, numbers, dots, or underscores"
	MsgPasswordTooShort   = "Password must be at least 12 characters in length"
	MsgUsernameTaken      = "Username is already in use"
	MsgEmailTaken         = "User with given email address already exists"
	MsgUnableToRegister   = "Unable to register user"
	MsgInvalidCredentials = "Invalid login credentials"
	MsgLedgerNameTooLong  = "Ledger name must be less than 128 characters"
	MsgInvalidCurrency    = "Invalid currency specified"
	MsgInvalidUser        = "Invalid user specified"
	MsgInvalidRequest     = "Invalid request"
	MsgUnauthorized       = "Unauthorized"
	MsgForbidden          = "Forbidden"
	MsgNotFound           = "Not found"
	MsgUnableToComplete   = "Unable to complete request"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
)

// ValidationError is a user-facing input problem.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// PersistenceError wraps an infrastructure failure. Only Message, or the
// generic text, ever reaches the client.
type PersistenceError struct {
	Op      string
	Message string
	Err     error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) PublicMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return MsgUnableToComplete
}

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// isServiceError reports whether err already belongs to the service error
// taxonomy.
func isServiceError(err error) bool {
	var validationErr *ValidationError
	var persistenceErr *PersistenceError
	return errors.As(err, &validationErr) ||
		errors.As(err, &persistenceErr) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound)
}

// StatusFor maps a service error to its HTTP status and public message.
func StatusFor(err error) (int, string) {
	var validationErr *ValidationError
	var persistenceErr *PersistenceError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Message
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusBadRequest, MsgInvalidCredentials
	case errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized, MsgUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, MsgForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, MsgNotFound
	case errors.As(err, &persistenceErr):
		return http.StatusInternalServerError, persistenceErr.PublicMessage()
	default:
		return http.StatusInternalServerError, MsgUnableToComplete
	}
}
