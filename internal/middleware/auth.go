package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/repository"
)

type contextKey string

const (
	// ContextKeyPrincipal is the key for storing the principal in request context.
	ContextKeyPrincipal contextKey = "principal"
)

// Claims are the JWT claims taskdesk expects from the identity provider.
type Claims struct {
	Role         string  `json:"role"`
	DepartmentID *string `json:"department_id"`
	FullName     string  `json:"full_name"`
	jwt.RegisteredClaims
}

// AuthMiddleware handles Bearer token authentication. Tokens are HS256
// JWTs; the profile row is the source of truth for role and department,
// so a stale token cannot keep privileges a role change revoked.
type AuthMiddleware struct {
	secret      []byte
	profileRepo *repository.ProfileRepository
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(secret string, profileRepo *repository.ProfileRepository) *AuthMiddleware {
	return &AuthMiddleware{
		secret:      []byte(secret),
		profileRepo: profileRepo,
	}
}

// Authenticate validates the Bearer token and adds the principal to request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
			return
		}

		token := parts[1]
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		subject, err := m.parseToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		profile, err := m.profileRepo.GetByID(r.Context(), subject)
		if err != nil {
			if err == domain.ErrProfileNotFound {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		principal := domain.Principal{
			ID:       profile.ID,
			Role:     profile.Role,
			FullName: profile.FullName,
		}
		if profile.DepartmentID != nil {
			principal.DepartmentID = *profile.DepartmentID
		}

		ctx := context.WithValue(r.Context(), ContextKeyPrincipal, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// parseToken verifies the HS256 signature and returns the subject claim.
func (m *AuthMiddleware) parseToken(token string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", domain.ErrInvalidToken, t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}

// GetPrincipalFromContext retrieves the authenticated principal from request context.
func GetPrincipalFromContext(ctx context.Context) (domain.Principal, error) {
	principal, ok := ctx.Value(ContextKeyPrincipal).(domain.Principal)
	if !ok {
		return domain.Principal{}, fmt.Errorf("principal not found in context")
	}
	return principal, nil
}
