package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"anadara.com/exportmarket/internal/entity"
	userRepo "anadara.com/exportmarket/internal/modules/user/repository"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const principalKey = "principal"

type AuthMiddleware struct {
	userRepo userRepo.UserRepository
	secret   string
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, secret string) *AuthMiddleware {
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		secret = "change-me"
	}

	return &AuthMiddleware{
		userRepo: userRepo,
		secret:   secret,
	}
}

// Principal returns the authenticated user attached by RequireAuth or
// OptionalAuth, or nil when the request is anonymous.
func Principal(c *gin.Context) *entity.User {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil
	}
	user, ok := value.(*entity.User)
	if !ok {
		return nil
	}
	return user
}

// resolve verifies the bearer token and loads its subject. It returns the
// HTTP status a mandatory gate should respond with on failure.
func (m *AuthMiddleware) resolve(c *gin.Context) (*entity.User, int, string) {
	tokenString := ""
	authHeader := c.GetHeader("Authorization")

	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}

	if tokenString == "" {
		return nil, http.StatusUnauthorized, "authorization required"
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, http.StatusUnauthorized, "invalid or expired token"
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, http.StatusUnauthorized, "invalid token claims"
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, http.StatusUnauthorized, "invalid token subject"
	}

	user, err := m.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil {
		return nil, http.StatusUnauthorized, "user not found"
	}

	// Suspension is a policy failure, not a credential one
	if user.IsSuspended() {
		return nil, http.StatusForbidden, "account is suspended"
	}

	return user, 0, ""
}

// RequireAuth rejects requests without a valid credential for an existing,
// non-suspended account, and attaches the principal to the context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, status, message := m.resolve(c)
		if user == nil {
			c.JSON(status, gin.H{"error": message})
			c.Abort()
			return
		}

		c.Set(principalKey, user)
		c.Next()
	}
}

// OptionalAuth attaches the principal when a valid credential is present and
// silently continues without one otherwise.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, _, _ := m.resolve(c); user != nil {
			c.Set(principalKey, user)
		}
		c.Next()
	}
}

// RequireRoles passes only principals whose role is in the allowed set.
func (m *AuthMiddleware) RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := Principal(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "access denied. required roles: " + strings.Join(roles, ", ")})
		c.Abort()
	}
}

// RequireAdmin is shorthand for the administrative role gate.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.RequireRoles(entity.RoleAdmin)
}

// RequireVerified passes only principals whose account is verified.
func (m *AuthMiddleware) RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := Principal(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		if !user.IsVerified {
			c.JSON(http.StatusForbidden, gin.H{"error": "account verification required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// OwnerExtractor resolves the owner of the resource a request targets.
type OwnerExtractor func(c *gin.Context) (uuid.UUID, error)

// RequireOwnerOrAdmin lets admins through unconditionally; any other
// principal must own the target resource.
func (m *AuthMiddleware) RequireOwnerOrAdmin(extract OwnerExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := Principal(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		if user.Role == entity.RoleAdmin {
			c.Next()
			return
		}

		ownerID, err := extract(c)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
			c.Abort()
			return
		}

		if ownerID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "you can only access your own resources"})
			c.Abort()
			return
		}

		c.Next()
	}
}
