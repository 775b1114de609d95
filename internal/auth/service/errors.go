package service

import "errors"

// Outcomes returned by the token lifecycle operations. The HTTP layer maps
// each onto a wire error code; none of them carry internal detail.
var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrUnauthorized       = errors.New("unauthorized")
)
