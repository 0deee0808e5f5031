package auth

import "errors"

// Token verification failures. Any of these is terminal for the token.
var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Caller-facing messages. They are part of the API contract.
const (
	MsgTokenRequired      = "Access token required"
	MsgTokenExpired       = "Token expired"
	MsgTokenInvalid       = "Invalid token"
	MsgTokenRevoked       = "Token revoked"
	MsgUserNotFound       = "User not found"
	MsgUserDeactivated    = "User account is deactivated"
	MsgInvalidCredentials = "Invalid email or password"
)
