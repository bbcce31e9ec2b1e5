package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"manjaword/pkg/logger"
	"manjaword/pkg/response"
)

type contextKey string

const SubjectKey contextKey = "subject"

// SessionSubject is the subject of tokens minted for the desktop shell.
const SessionSubject = "manjaword-desktop"

// IssueToken signs a session token for the editor shell. A zero ttl never
// expires.
func IssueToken(secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("session secret is not configured")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  SessionSubject,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The browser WebSocket API cannot set headers, so /ws passes the token in the query.
			tokenString := r.URL.Query().Get("token")
			if tokenString == "" {
				authHeader := r.Header.Get("Authorization")
				tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			}

			if tokenString == "" {
				response.Unauthorized(w, "Unauthorized: No token provided")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				if secret == "" {
					return nil, fmt.Errorf("server is not configured to validate tokens")
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Sugar.Warnf("Invalid token: %v", err)
				response.Unauthorized(w, "Unauthorized: Invalid or expired token")
				return
			}

			subject, err := token.Claims.GetSubject()
			if err != nil || subject != SessionSubject {
				response.Unauthorized(w, "Unauthorized: Unexpected token subject")
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
