package app

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrSessionNotFound  = errors.New("session not found")
	ErrDeleteDeclined   = errors.New("delete not confirmed")
	ErrEmptyQuery       = errors.New("query is empty")
	ErrExchangeInFlight = errors.New("an exchange is already in flight for this session")
	ErrNotAuthenticated = errors.New("not logged in")
	ErrPasswordMismatch = errors.New("new passwords don't match")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)
