package jwtmw

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kanban_backend/internal/platform/authctx"
)

// Verifier validates a bearer token and returns its subject.
type Verifier interface {
	Verify(token string) (string, error)
}

// Gate decides per request whether it is authenticated, anonymously permitted or rejected.
type Gate struct {
	verifier Verifier
	allow    *AllowList
}

// NewGate creates a Gate backed by verifier and allow.
func NewGate(verifier Verifier, allow *AllowList) *Gate {
	return &Gate{verifier: verifier, allow: allow}
}

// Handler returns the gin middleware.
func (g *Gate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		r := c.Request
		if r.Method == http.MethodOptions {
			c.Next()
			return
		}

		// 1. A valid bearer token always authenticates, even on allow-listed routes.
		if auth := c.GetHeader("Authorization"); auth != "" {
			if tokenStr, ok := bearerToken(auth); ok {
				if username, err := g.verifier.Verify(tokenStr); err == nil {
					authctx.Bind(c, authctx.Principal{Username: username})
					c.Next()
					return
				}
			}
			slog.Debug("rejected bearer token", "path", r.URL.Path, "remote_addr", c.ClientIP())
		}

		// 2. Anonymous access for allow-listed routes.
		if g.allow.Allows(r.Method, r.URL.Path) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
}

// RequirePrincipal aborts with 401 when no principal was bound by the gate.
// Handlers on routes that are allow-listed for some methods use it as a second check.
func RequirePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authctx.FromGin(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return tok, tok != ""
}
