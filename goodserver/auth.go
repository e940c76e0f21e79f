package goodserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// bearerAuth rejects requests that do not carry a valid HMAC-signed Bearer
// token. Every verification endpoint sits behind it.
func bearerAuth(secret []byte, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			slog.Warn("request without bearer token", "path", r.URL.Path)
			respondWithErr(w, http.StatusUnauthorized, "missing bearer token", "unauthorized request", nil)
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if err := verifyAccessToken(secret, tokenString); err != nil {
			respondWithErr(w, http.StatusUnauthorized, "invalid bearer token", "unauthorized request", err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func verifyAccessToken(secret []byte, tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("failed to parse access token: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("access token is not valid")
	}
	return nil
}

// CreateAccessToken mints the Bearer credential the bridge presents on every
// backend call.
func CreateAccessToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}
