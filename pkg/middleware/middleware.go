package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leavedesk/service-booking/pkg/auth"
)

const (
	ctxUserID       = "user_id"
	ctxUserName     = "user_name"
	ctxUserRole     = "user_role"
	ctxRequestID    = "request_id"
	headerRequestID = "X-Request-ID"
)

// AuthMiddleware verifies the bearer token and stores the caller identity on the context.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}

		claims, err := jwtManager.ValidateToken(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
			return
		}

		c.Set(ctxUserID, claims.UserID())
		c.Set(ctxUserName, claims.DisplayName)
		c.Set(ctxUserRole, claims.Role)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the caller has one of roles.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
	}
}

// GetUserID returns the authenticated LINE user ID.
func GetUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// GetUserName returns the display name from the token, if any.
func GetUserName(c *gin.Context) string {
	return c.GetString(ctxUserName)
}

// GetUserRole returns the caller's role.
func GetUserRole(c *gin.Context) (auth.Role, bool) {
	v, ok := c.Get(ctxUserRole)
	if !ok {
		return "", false
	}
	role, ok := v.(auth.Role)
	return role, ok
}

// RequestIDMiddleware propagates or assigns an X-Request-ID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// LoggerMiddleware writes one access log entry per request.
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(ctxRequestID)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// RecoveryMiddleware converts panics into 500 responses and logs them.
func RecoveryMiddleware(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(ctxRequestID)),
		)
		abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	})
}

// CORSMiddleware allows the mini-app origins to call the API. An empty list allows all origins.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", headerRequestID},
		ExposeHeaders:    []string{headerRequestID},
		AllowCredentials: len(allowedOrigins) > 0,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}

// SecurityHeadersMiddleware sets the response headers every JSON API reply carries.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// abort writes the same error envelope as pkg/response.
func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}
