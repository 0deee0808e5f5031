package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
// The registered ID (jti) identifies a refresh token for revocation.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`
}

// Identity is the subject a token pair is issued for.
type Identity struct {
	UserID string
	Email  string
	Role   string
}
