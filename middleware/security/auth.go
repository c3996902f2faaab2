package security

import (
	"strings"

	"github.com/anandbobba/Innovex-Service/service/session"
	"github.com/anandbobba/Innovex-Service/tools/errs"
	"github.com/gin-gonic/gin"
)

// Context keys set for downstream handlers.
const (
	CtxSessionKey = "session"   // *session.Session
	CtxSpocIDKey  = "spocId"    // string, empty for PIN sessions
	CtxAuthWayKey = "authStyle" // "session" | "testToken"
)

const (
	HeaderSessionToken = "X-Session-Token"
	HeaderTestToken    = "X-Test-Token"
)

type Options struct {
	Store session.Store
	// TestToken is a shared-secret escape hatch for development; empty
	// disables it.
	TestToken string
}

// TokenFromRequest reads the session token from X-Session-Token or an
// Authorization bearer.
func TokenFromRequest(c *gin.Context) string {
	if tok := strings.TrimSpace(c.GetHeader(HeaderSessionToken)); tok != "" {
		return tok
	}
	if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return strings.TrimSpace(authz[len("bearer "):])
		}
	}
	return ""
}

// Middleware gates mutating routes: a live session token passes, otherwise
// the shared-secret header may. Anything else is 403.
func Middleware(opts *Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := TokenFromRequest(c); tok != "" {
			sess, err := opts.Store.Get(c.Request.Context(), tok)
			if err == nil {
				c.Set(CtxSessionKey, sess)
				c.Set(CtxSpocIDKey, sess.SpocID)
				c.Set(CtxAuthWayKey, "session")
				c.Next()
				return
			}
		}

		if opts.TestToken != "" && c.GetHeader(HeaderTestToken) == opts.TestToken {
			c.Set(CtxAuthWayKey, "testToken")
			c.Next()
			return
		}

		code, msg := errs.CodeOf(errs.ErrUnauthorized.WithDetail("missing or expired session token"))
		c.AbortWithStatusJSON(code, gin.H{"error": msg})
	}
}
