package middleware

import (
	"strings"

	"github.com/Bateyjosue/xenfi-systems/internal/apperr"
	"github.com/Bateyjosue/xenfi-systems/internal/policy"
	"github.com/Bateyjosue/xenfi-systems/internal/util"

	"github.com/gin-gonic/gin"
)

// TokenCookie is the session cookie set at login.
const TokenCookie = "token"

const identityKey = "identity"

// Authenticator turns a session token into the caller's identity.
type Authenticator interface {
	Authenticate(token string) (*policy.Identity, error)
}

// Auth rejects requests without a valid session and stores the identity in
// the context. The cookie wins over the Authorization header.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.Authenticate(tokenFrom(c))
		if err != nil {
			util.Fail(c, err)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireAction lets the request through only if the current identity may
// perform action. Must run after Auth.
func RequireAction(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := CurrentIdentity(c)
		if id == nil {
			util.Fail(c, apperr.Unauthenticated("Authentication required"))
			return
		}
		if !policy.CanAccess(id, action, policy.Resource{}) {
			util.Fail(c, apperr.Forbidden("Insufficient permissions"))
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by Auth, or nil.
func CurrentIdentity(c *gin.Context) *policy.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*policy.Identity)
	return id
}

func tokenFrom(c *gin.Context) string {
	if tok, err := c.Cookie(TokenCookie); err == nil && tok != "" {
		return tok
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
