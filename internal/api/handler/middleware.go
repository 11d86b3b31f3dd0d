package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

// ctxUsername is the gin context key the middleware stores the caller's
// username under.
const ctxUsername = "username"

// AuthRequired verifies the bearer token issued by the upstream auth service
// and stores the username it identifies. The core never issues tokens.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authorization token missing"})
			return
		}

		username, err := usernameFromToken(token, h.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid or expired token"})
			return
		}

		c.Set(ctxUsername, username)
		c.Next()
	}
}

// callerUsername returns the identity AuthRequired resolved for this request.
func callerUsername(c *gin.Context) string {
	return c.GetString(ctxUsername)
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Browsers cannot set headers on websocket upgrades, so the realtime
	// endpoint also accepts the token as a query parameter.
	return c.Query("token")
}

func usernameFromToken(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("unexpected claims type")
	}
	if username, ok := claims["username"].(string); ok && username != "" {
		return username, nil
	}
	// The upstream auth service sets the identity as the subject claim.
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, nil
	}
	return "", errors.New("token carries no identity")
}
