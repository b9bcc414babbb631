package restapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingToken is returned when no bearer token is present.
	ErrMissingToken = errors.New("missing authentication token")
	// ErrInvalidToken is returned when the token fails validation.
	ErrInvalidToken = errors.New("invalid authentication token")
)

// JWTAuth validates HS256 bearer tokens on mutating endpoints.
type JWTAuth struct {
	secretKey string
}

// NewJWTAuth builds a JWTAuth over the given HMAC secret.
func NewJWTAuth(secretKey string) *JWTAuth {
	return &JWTAuth{secretKey: secretKey}
}

type jwtClaims struct {
	jwt.RegisteredClaims
}

func (a *JWTAuth) authenticate(r *http.Request) error {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ErrMissingToken
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	_, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(a.secretKey), nil
	})
	if err != nil {
		return ErrInvalidToken
	}
	return nil
}

// Require wraps next, rejecting any request that does not carry a valid
// bearer token with 401.
func (a *JWTAuth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := a.authenticate(r); err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
