package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Office context keys
const (
	OfficeIDKey     = "office_id"
	OfficeHeaderKey = "X-Office-ID"
)

// OfficeMiddlewareConfig holds configuration for office middleware
type OfficeMiddlewareConfig struct {
	// HeaderEnabled enables X-Office-ID header extraction (dev fallback)
	HeaderEnabled bool
	// JWTEnabled enables JWT claim extraction (requires JWT middleware to run first)
	JWTEnabled bool
	// SkipPaths are paths that don't require office context (e.g. health check)
	SkipPaths []string
	// Required determines if office context is mandatory
	Required bool
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultOfficeConfig returns default office middleware configuration
func DefaultOfficeConfig() OfficeMiddlewareConfig {
	return OfficeMiddlewareConfig{
		HeaderEnabled: true,
		JWTEnabled:    true,
		SkipPaths:     []string{"/health", "/healthz", "/ready", "/api/v1/health", "/api/v1/system/ping"},
		Required:      true,
		Logger:        nil,
	}
}

// OfficeMiddleware extracts the acting office from the request.
// Extraction order: JWT claims > X-Office-ID header.
func OfficeMiddleware() gin.HandlerFunc {
	return OfficeMiddlewareWithConfig(DefaultOfficeConfig())
}

// OfficeMiddlewareWithConfig returns office middleware with custom configuration
func OfficeMiddlewareWithConfig(cfg OfficeMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		var officeID string

		// Priority 1: JWT claims (if JWT middleware has already run)
		if cfg.JWTEnabled {
			if jwtOfficeID, exists := c.Get(JWTOfficeIDKey); exists {
				if oid, ok := jwtOfficeID.(string); ok && oid != "" {
					officeID = oid
				}
			}
		}

		// Priority 2: X-Office-ID header (development fallback)
		if officeID == "" && cfg.HeaderEnabled {
			officeID = c.GetHeader(OfficeHeaderKey)
		}

		if officeID != "" {
			if _, err := uuid.Parse(officeID); err != nil {
				respondUnauthorized(c, "Invalid office ID format")
				return
			}
		}

		if officeID == "" && cfg.Required {
			respondUnauthorized(c, "Office identification required")
			return
		}

		if officeID != "" {
			c.Set(OfficeIDKey, officeID)

			// Propagate into the request context for the service layer
			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			ctx, _ = logger.WithOfficeID(ctx, log, officeID)
			c.Request = c.Request.WithContext(ctx)

			if cfg.Logger != nil {
				cfg.Logger.Debug("Office identified",
					zap.String("office_id", officeID),
				)
			}
		}

		c.Next()
	}
}

// respondUnauthorized sends an unauthorized response
func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetOfficeID retrieves the office ID from gin.Context
func GetOfficeID(c *gin.Context) string {
	if officeID, exists := c.Get(OfficeIDKey); exists {
		if oid, ok := officeID.(string); ok {
			return oid
		}
	}
	return ""
}

// GetOfficeUUID retrieves the office ID as UUID from gin.Context
func GetOfficeUUID(c *gin.Context) (uuid.UUID, error) {
	officeID := GetOfficeID(c)
	if officeID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(officeID)
}

// OptionalOfficeMiddleware creates middleware that doesn't require an office
func OptionalOfficeMiddleware() gin.HandlerFunc {
	cfg := DefaultOfficeConfig()
	cfg.Required = false
	return OfficeMiddlewareWithConfig(cfg)
}
