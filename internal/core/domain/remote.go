package domain

import "errors"

// Errors surfaced by adapters that fetch data owned by other services.
var (
	ErrRemoteUnavailable = errors.New("remote service unavailable")
	ErrRemoteNotFound    = errors.New("remote resource not found")
)
