package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"condo-booking/internal/domain/user"
	"condo-booking/internal/handler/httperr"
	"condo-booking/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
	logger         *slog.Logger
}

const (
	ctxActorKey  = "actor"
	ctxClaimsKey = "jwt_claims"

	codeUnauthorized = "UNAUTHORIZED"
	codeForbidden    = "FORBIDDEN"
)

func NewAuthMiddleware(tokenValidator usecase.TokenValidator, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
		logger:         logger,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized, codeUnauthorized, nil, "Access token required", nil)
			return
		}

		actor, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			m.logger.Warn("token validation failed", "error", err.Error())
			httperr.AbortWithError(c, http.StatusUnauthorized, codeUnauthorized, err, "Invalid or expired token", nil)
			return
		}

		SetActor(c, actor)
		c.Next()
	}
}

// RequireRoleAtLeast must run after RequireAuth.
func (m *AuthMiddleware) RequireRoleAtLeast(minRole user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			httperr.AbortWithError(c, http.StatusUnauthorized, codeUnauthorized, nil, "Unauthorized", nil)
			return
		}

		if !actor.Role.AtLeast(minRole) {
			httperr.AbortWithError(c, http.StatusForbidden, codeForbidden, nil, "Insufficient permissions", nil)
			return
		}

		c.Next()
	}
}

// OptionalAuth sets the actor when a valid token is present and never aborts.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		actor, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}

		SetActor(c, actor)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// SetActor stores the authenticated actor and the claim map the request logger reads.
func SetActor(c *gin.Context, actor user.Actor) {
	claims := map[string]any{
		"user_id": actor.ID.String(),
		"role":    actor.Role.String(),
	}
	if actor.UnitID != nil {
		claims["unit_id"] = actor.UnitID.String()
	}
	c.Set(ctxActorKey, actor)
	c.Set(ctxClaimsKey, claims)
}

func GetActor(c *gin.Context) (user.Actor, bool) {
	v, exists := c.Get(ctxActorKey)
	if !exists {
		return user.Actor{}, false
	}

	actor, ok := v.(user.Actor)
	return actor, ok
}
