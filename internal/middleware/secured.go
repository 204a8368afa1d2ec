package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"distress-service/helper"
	"distress-service/pkg/constants"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var errMissingToken = errors.New("missing bearer token")

// Secured verifies an HS256 bearer token and exposes its subject and role on
// the context. With an empty secret every request passes (local development).
func Secured(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		raw := bearerToken(c)
		if raw == "" {
			helper.SendError(c, http.StatusUnauthorized, errMissingToken, helper.ErrUnauthorized)
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			helper.SendError(c, http.StatusUnauthorized, err, helper.ErrUnauthorized)
			return
		}

		sub, _ := claims.GetSubject()
		role, _ := claims["role"].(string)

		c.Set(constants.Token, raw)
		c.Set(constants.UserID, sub)
		c.Set(constants.UserRole, role)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), constants.TokenKey, raw))
		c.Next()
	}
}

// RequireRole rejects callers whose token role is not listed. It is a no-op
// when Secured let the request through without a token.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(constants.UserRole)
		if !exists {
			c.Next()
			return
		}
		role, _ := v.(string)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		helper.SendError(c, http.StatusForbidden, errors.New("role not allowed"), helper.ErrUnauthorized)
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	// browsers cannot set headers on websocket upgrades
	return c.Query("token")
}
