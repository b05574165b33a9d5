package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/mob-esports/esports-api/models"
)

type contextKey string

const principalContextKey contextKey = "principal"

var ErrInvalidToken = errors.New("invalid or expired token")

// ParseToken verifies an HS256 token and resolves the typed principal from
// its claims.
func ParseToken(secret []byte, tokenString string) (models.Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return models.Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Principal{}, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return models.Principal{}, ErrInvalidToken
	}
	role, ok := claims["role"].(string)
	if !ok {
		return models.Principal{}, ErrInvalidToken
	}
	switch models.UserRole(role) {
	case models.RolePlayer, models.RoleAdmin, models.RoleOrganizer:
	default:
		return models.Principal{}, ErrInvalidToken
	}

	emailVerified, _ := claims["email_verified"].(bool)
	approved, _ := claims["is_approved"].(bool)

	return models.Principal{
		ID:            int(userID),
		Role:          models.UserRole(role),
		EmailVerified: emailVerified,
		Approved:      approved,
	}, nil
}

// Authenticate resolves the Bearer token into a principal and stores it in
// the request context. Requests without a valid token are rejected.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString := strings.TrimPrefix(header, "Bearer ")
			if header == "" || tokenString == header {
				writeAuthError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			principal, err := ParseToken(secret, tokenString)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, ErrInvalidToken.Error())
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MaybeAuthenticate resolves the principal when a valid Bearer token is
// present and continues anonymously otherwise. Used on public read routes
// whose responses vary by caller.
func MaybeAuthenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString := strings.TrimPrefix(header, "Bearer ")
			if header != "" && tokenString != header {
				if principal, err := ParseToken(secret, tokenString); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), principalContextKey, principal))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole gates a route group to the listed roles.
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeAuthError(w, http.StatusForbidden, "insufficient role")
		})
	}
}

func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(models.Principal)
	return principal, ok
}

// WithPrincipal is used by tests and by the websocket upgrade path, which
// authenticates outside the standard header flow.
func WithPrincipal(ctx context.Context, principal models.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": false,
		"error":  message,
	})
}
