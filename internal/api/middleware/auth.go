package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/doomdagadiggiedahdah/SentinelNet/internal/auth"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/db"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/metrics"
)

// OrgResolver looks up the organization owning a credential digest.
type OrgResolver interface {
	GetOrganizationByAPIKeyHash(hash string) (*db.Organization, error)
}

// OrgKey is the gin context key under which the authenticated organization is
// stored.
const OrgKey = "org"

// Org retrieves the authenticated organization from the request context.
func Org(c *gin.Context) *db.Organization {
	org, _ := c.MustGet(OrgKey).(*db.Organization)
	return org
}

// APIKeyAuth authenticates requests by opaque Bearer API key.
func APIKeyAuth(resolver OrgResolver, collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, collector, "Authorization header required")
			return
		}

		key := strings.TrimPrefix(authHeader, "Bearer ")
		if key == authHeader {
			unauthorized(c, collector, "Bearer token required")
			return
		}

		org, err := resolver.GetOrganizationByAPIKeyHash(auth.HashAPIKey(key))
		if err != nil {
			unauthorized(c, collector, "Invalid API key")
			return
		}

		c.Set(OrgKey, org)
		c.Set("org_id", org.ID)
		c.Next()
	}
}

func unauthorized(c *gin.Context, collector *metrics.Collector, msg string) {
	if collector != nil {
		collector.RecordAuthFailure()
	}
	c.Header("WWW-Authenticate", "Bearer")
	c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
	c.Abort()
}

func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
