package auth

import (
	"time"

	"codeberg.org/edtech/portal/internal/routes"
	"github.com/golang-jwt/jwt/v5"
)

// the issuer every accepted token must carry
const Issuer = "ED_TECH"

// name of the HTTP-only cookie holding the access token
const AccessTokenCookie = "accessToken"

// represents JWT claims
type Claims struct {
	Role  routes.Role `json:"role"`
	Email string      `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// outcome of verifying a token; zero value means unauthenticated
type Result struct {
	Valid     bool
	Subject   string
	Role      routes.Role
	Email     string
	ExpiresAt time.Time
}

// validates session tokens against a secret and issuer
type Verifier struct {
	secret []byte
	issuer string
}
