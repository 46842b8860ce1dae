// Package session binds each HTTP request to its cart session.
package session

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dwikikusuma/storefront/internal/pricing"
)

const (
	Header     = "X-Session-ID"
	contextKey = "storefront.session"
)

// Middleware resolves the session named by the X-Session-ID header, starting a new
// one when the header is absent. The ID in use is echoed back on the response.
func Middleware(reg *pricing.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(Header))
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(Header, id)
		c.Set(contextKey, reg.Get(id))
		c.Next()
	}
}

// From returns the session Middleware attached. It panics if Middleware is not installed.
func From(c *gin.Context) *pricing.Session {
	return c.MustGet(contextKey).(*pricing.Session)
}
