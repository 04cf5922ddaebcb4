package auth

import (
	"fmt"
	"time"

	"codeberg.org/edtech/portal/internal/routes"
	"github.com/golang-jwt/jwt/v5"
)

// creates a verifier for tokens signed with secret and issued by issuer
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// creates a JWT token with the claim layout the backend issues
func (v *Verifier) Issue(subject string, role routes.Role, email string, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", fmt.Errorf("JWT_SECRET not set")
	}

	now := time.Now()
	claims := Claims{
		Role:  role,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    v.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// validates a JWT token and returns the claims
func (v *Verifier) Parse(tokenString string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return v.secret, nil
	},
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
	)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// verifies a token and fails closed: any error yields an invalid result
func (v *Verifier) Verify(tokenString string) (result Result) {
	defer func() {
		if recover() != nil {
			result = Result{}
		}
	}()

	claims, err := v.Parse(tokenString)
	if err != nil || claims.Subject == "" {
		return Result{}
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return Result{
		Valid:     true,
		Subject:   claims.Subject,
		Role:      claims.Role,
		Email:     claims.Email,
		ExpiresAt: expiresAt,
	}
}
