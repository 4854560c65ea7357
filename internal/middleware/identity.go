package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/quizer-service/internal/config"
	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
)

// Context keys set by Authenticate
const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
	RoleKey     = "role"
)

// Trusted gateway headers used when AUTH_MODE=header
const (
	HeaderUserID   = "X-User-ID"
	HeaderUsername = "X-Username"
	HeaderUserRole = "X-User-Role"
)

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidRole        = errors.New("invalid role")
)

// IdentityResolver extracts the caller from a request
type IdentityResolver interface {
	Resolve(c *gin.Context) (*models.Identity, error)
}

// HeaderResolver trusts identity headers injected by an upstream gateway
type HeaderResolver struct{}

func (HeaderResolver) Resolve(c *gin.Context) (*models.Identity, error) {
	userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
	if userID == "" {
		return nil, ErrMissingCredentials
	}

	role := models.UserRole(strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderUserRole))))
	if role == "" {
		role = models.RoleStudent
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	username := strings.TrimSpace(c.GetHeader(HeaderUsername))
	if username == "" {
		username = userID
	}
	return &models.Identity{UserID: userID, Username: username, Role: role}, nil
}

// CasdoorResolver validates bearer tokens issued by Casdoor
type CasdoorResolver struct {
	client *casdoorsdk.Client
}

func NewCasdoorResolver(cfg config.AuthConfig) *CasdoorResolver {
	return &CasdoorResolver{
		client: casdoorsdk.NewClient(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret, cfg.Certificate, cfg.Organization, cfg.Application),
	}
}

func (r *CasdoorResolver) Resolve(c *gin.Context) (*models.Identity, error) {
	token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
	if token == "" {
		return nil, ErrMissingCredentials
	}

	claims, err := r.client.ParseJwtToken(token)
	if err != nil {
		return nil, err
	}

	roleNames := make([]string, 0, len(claims.Roles))
	for _, role := range claims.Roles {
		if role != nil {
			roleNames = append(roleNames, role.Name)
		}
	}

	username := claims.DisplayName
	if username == "" {
		username = claims.Name
	}
	userID := claims.Id
	if userID == "" {
		userID = claims.Name
	}

	return &models.Identity{
		UserID:   userID,
		Username: username,
		Role:     roleFromClaims(claims.IsAdmin, claims.Tag, roleNames),
	}, nil
}

// roleFromClaims picks the strongest role granted by the token
func roleFromClaims(isAdmin bool, tag string, roles []string) models.UserRole {
	if isAdmin {
		return models.RoleAdmin
	}
	best := models.RoleStudent
	for _, name := range append(roles, tag) {
		switch models.UserRole(strings.ToLower(name)) {
		case models.RoleAdmin:
			return models.RoleAdmin
		case models.RoleLecturer:
			best = models.RoleLecturer
		}
	}
	return best
}

// NewIdentityResolver builds the resolver selected by AUTH_MODE
func NewIdentityResolver(cfg config.AuthConfig) IdentityResolver {
	if cfg.Mode == config.AuthModeCasdoor {
		return NewCasdoorResolver(cfg)
	}
	return HeaderResolver{}
}

// Authenticate rejects anonymous requests and stores the caller in the gin context
func Authenticate(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := resolver.Resolve(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "User not authenticated",
				"details": err.Error(),
			})
			return
		}

		c.Set(UserIDKey, identity.UserID)
		c.Set(UsernameKey, identity.Username)
		c.Set(RoleKey, identity.Role)
		c.Next()
	}
}

// RequireRole lets through callers holding one of roles. Admins always pass.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CurrentRole(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
			return
		}
		if role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient permissions"})
	}
}

func CurrentRole(c *gin.Context) (models.UserRole, bool) {
	v, ok := c.Get(RoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(models.UserRole)
	return role, ok
}

// CurrentIdentity returns the caller stored by Authenticate
func CurrentIdentity(c *gin.Context) (*models.Identity, bool) {
	userID := c.GetString(UserIDKey)
	if userID == "" {
		return nil, false
	}
	role, _ := CurrentRole(c)
	return &models.Identity{
		UserID:   userID,
		Username: c.GetString(UsernameKey),
		Role:     role,
	}, true
}
