package auth

import "errors"

var (
	// ErrInvalidCredentials indicates the username or password is wrong.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrTokenInvalid indicates the token failed signature or claim checks.
	ErrTokenInvalid = errors.New("auth: token invalid")
)
