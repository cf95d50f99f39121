package middleware

import (
	"net/http"
	"strings"

	"local-services/internal/data/entity"
	"local-services/internal/data/repository"
	"local-services/pkg/utils"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Auth validates the bearer JWT and puts the Actor {id, role} on the request
// context. The token carries the role claim, so a single account lookup
// confirms the subject still exists.
func Auth(repo *repository.Repository, config *utils.Config, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			claims := &TokenClaims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(config.JWT.Secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("Token validation failed", zap.Error(err))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			role, err := entity.ParseRole(claims.Role)
			if err != nil {
				utils.ResponseUnauthorized(w, "Invalid role")
				return
			}

			actorID, err := uuid.Parse(claims.Subject)
			if err != nil {
				utils.ResponseUnauthorized(w, "Invalid token subject")
				return
			}

			// Confirm the account still exists (single polymorphic lookup)
			account, err := repo.FindAccount(r.Context(), role, actorID)
			if err != nil {
				logger.Error("Failed to look up account",
					zap.String("actor_id", actorID.String()),
					zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if account == nil {
				utils.ResponseUnauthorized(w, "Account not found")
				return
			}

			ctx := utils.SetActorContext(r.Context(), entity.Actor{ID: actorID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles rejects actors outside the allowed set. Must run after Auth.
func RequireRoles(logger *zap.Logger, roles ...entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := utils.GetActorFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("Role access denied",
				zap.String("actor_id", actor.ID.String()),
				zap.String("role", string(actor.Role)),
				zap.String("path", r.URL.Path))
			utils.ResponseForbidden(w, "Access denied")
		})
	}
}

// TokenClaims is the JWT payload: subject is the account id, role selects
// which table it lives in.
type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
