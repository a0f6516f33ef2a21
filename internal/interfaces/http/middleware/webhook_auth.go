package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tradepost/backend/internal/infrastructure/auth"
	"github.com/tradepost/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Webhook auth context keys
const (
	WebhookGatewayKey = "webhook_gateway"
	AuthHeaderKey     = "Authorization"
	BearerPrefix      = "Bearer "
)

// TokenValidator checks a bearer token and returns its claims
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// WebhookAuthConfig holds configuration for WebhookAuth
type WebhookAuthConfig struct {
	Validator TokenValidator
	// ReplayGuard is optional; when set each token id is accepted once
	ReplayGuard auth.ReplayGuard
	Logger      *zap.Logger
}

// WebhookAuth requires a valid gateway bearer token on every request.
// A failing replay guard is logged and the request is let through.
func WebhookAuth(cfg WebhookAuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if header == "" || !ok || token == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken)
			return
		}

		claims, err := cfg.Validator.Validate(token)
		if err != nil {
			abortUnauthorized(c, log, err)
			return
		}

		if cfg.ReplayGuard != nil && claims.ID != "" {
			fresh, err := cfg.ReplayGuard.Claim(c.Request.Context(), claims.ID, claims.ExpiresIn())
			switch {
			case err != nil:
				log.Error("Failed to check webhook token replay",
					zap.String("jti", claims.ID),
					zap.Error(err))
			case !fresh:
				abortUnauthorized(c, log, auth.ErrTokenReplayed)
				return
			}
		}

		c.Set(WebhookGatewayKey, claims.Gateway)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error) {
	log.Warn("Webhook authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("client_ip", c.ClientIP()),
	)

	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenReplayed):
		code, message = dto.ErrCodeTokenReplayed, "Token has already been used"
	}

	c.Header("WWW-Authenticate", `Bearer realm="tradepost"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		code, message, c.GetString(RequestIDContextKey),
	))
}
