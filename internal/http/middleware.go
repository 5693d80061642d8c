package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	"github.com/allisson/gatekeeper/internal/httputil"
)

// Inbound credential headers consumed by the pipeline. Matching is
// case-insensitive per HTTP semantics.
const (
	HeaderClientID     = "X-Client-Id"
	HeaderClientSecret = "X-Client-Secret"
	HeaderSessionID    = "X-Session-Id"

	// Outbound headers returned on fresh authentication.
	HeaderSessionToken = "X-Session-Token"

	headerAdminCredential = "X-Admin-Credential"
)

// CustomLoggerMiddleware logs one line per request with the request id
// attached by the requestid middleware.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("http request",
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_addr", c.ClientIP()),
		)
	}
}

// AdminAuthMiddleware guards the administrative surface with the single
// static credential, compared in constant time. The credential travels in
// X-Admin-Credential or as a bearer token.
func AdminAuthMiddleware(adminCredential string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplied := c.GetHeader(headerAdminCredential)
		if supplied == "" {
			supplied = bearerToken(c)
		}

		if adminCredential == "" ||
			subtle.ConstantTimeCompare([]byte(supplied), []byte(adminCredential)) != 1 {
			logger.Warn("admin authentication failed",
				slog.String("remote_addr", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.ErrorResponse{
				Error:   "unauthorized",
				Message: "Authentication is required",
			})
			return
		}

		c.Next()
	}
}

// CredentialsFromRequest extracts the pipeline credentials from the request
// headers. The authenticator applies the precedence among them.
func CredentialsFromRequest(c *gin.Context) authDomain.Credentials {
	return authDomain.Credentials{
		SessionID:     c.GetHeader(HeaderSessionID),
		ClientID:      c.GetHeader(HeaderClientID),
		ClientSecret:  c.GetHeader(HeaderClientSecret),
		BearerToken:   bearerToken(c),
		SourceAddress: c.ClientIP(),
	}
}

func bearerToken(c *gin.Context) string {
	authorization := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(authorization, "Bearer "); ok {
		return token
	}
	return ""
}
