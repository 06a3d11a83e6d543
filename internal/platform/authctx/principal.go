// Package authctx carries the authenticated caller through a request.
package authctx

import (
	"context"

	"github.com/gin-gonic/gin"
)

// GinKey is the gin context key holding the Principal.
const GinKey = "principal"

type ctxKey struct{}

// Principal is the identity bound to a request after its bearer token was verified.
type Principal struct {
	Username string
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the Principal bound to ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok && p.Username != ""
}

// Bind attaches p to both the gin context and the underlying request context.
func Bind(c *gin.Context, p Principal) {
	c.Set(GinKey, p)
	c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
}

// FromGin returns the Principal bound by Bind.
func FromGin(c *gin.Context) (Principal, bool) {
	if v, ok := c.Get(GinKey); ok {
		if p, ok := v.(Principal); ok && p.Username != "" {
			return p, true
		}
	}
	return FromContext(c.Request.Context())
}
