package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/pharmassist/internal/pkg/errcode"
	"github.com/xxxsen/pharmassist/internal/pkg/jwt"
	"github.com/xxxsen/pharmassist/internal/pkg/response"
)

const ContextTenantIDKey = "pharma_id"

// JWTAuth requires a bearer token carrying a pharma_id claim. An empty
// secret disables authentication.
func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(secret) == 0 {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, errcode.ErrUnauthorized, "missing authorization")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, errcode.ErrUnauthorized, "invalid authorization")
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(parts[1], secret)
		if err != nil {
			response.Error(c, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		c.Set(ContextTenantIDKey, claims.TenantID)
		c.Next()
	}
}

// TenantAllowed reports whether the authenticated tenant, if any, may act on
// tenantID.
func TenantAllowed(c *gin.Context, tenantID string) bool {
	value, ok := c.Get(ContextTenantIDKey)
	if !ok {
		return true
	}
	claimed, _ := value.(string)
	return claimed == tenantID
}
