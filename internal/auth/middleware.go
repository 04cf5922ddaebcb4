package auth

import (
	"net/http"
	"path"

	"codeberg.org/edtech/portal/internal/logger"
	"codeberg.org/edtech/portal/internal/routes"
	"github.com/gin-gonic/gin"
)

// context keys set by the gate on allowed requests
const (
	ContextUserID = "user_id"
	ContextRole   = "user_role"
	ContextEmail  = "user_email"
)

// per-navigation authorization outcome; an empty Redirect means allow
type Decision struct {
	Redirect string
	Result   Result
}

// reports whether the navigation may proceed
func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

// decides a single navigation. public routes are always allowed, even with a
// valid token, so pages that navigate after login never loop.
func Decide(path, token string, verifier *Verifier, rules *routes.Rules) Decision {
	class := rules.Classify(path)

	if class.Kind == routes.KindPublic {
		return Decision{}
	}

	if token == "" {
		return Decision{Redirect: routes.LoginPath}
	}

	result := verifier.Verify(token)
	if !result.Valid {
		return Decision{Redirect: routes.LoginPath}
	}

	if class.Kind == routes.KindRequiresRole && result.Role != class.Role {
		return Decision{Redirect: routes.Home(result.Role), Result: result}
	}

	return Decision{Result: result}
}

// redirects navigations the session token does not authorize
func Gate(verifier *Verifier, rules *routes.Rules) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redirectToClean(c) {
			return
		}

		token, _ := c.Cookie(AccessTokenCookie) //nolint:errcheck // missing cookie means no token

		decision := Decide(c.Request.URL.Path, token, verifier, rules)
		if !decision.Allowed() {
			logger.Debug("navigation redirected",
				"path", c.Request.URL.Path,
				"redirect", decision.Redirect,
				"has_token", token != "",
			)

			c.Redirect(http.StatusFound, decision.Redirect)
			c.Abort()
			return
		}

		setIdentity(c, decision.Result)
		c.Next()
	}
}

// page-level role check for pages outside the gate's matcher scope
func RequireRole(verifier *Verifier, role routes.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redirectToClean(c) {
			return
		}

		token, _ := c.Cookie(AccessTokenCookie) //nolint:errcheck // missing cookie means no token

		result := verifier.Verify(token)
		if !result.Valid {
			c.Redirect(http.StatusFound, routes.LoginPath)
			c.Abort()
			return
		}

		if role != "" && result.Role != role {
			c.Redirect(http.StatusFound, routes.Home(result.Role))
			c.Abort()
			return
		}

		setIdentity(c, result)
		c.Next()
	}
}

// sends a valid session to its role home, anything else to login
func DashboardRedirect(verifier *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(AccessTokenCookie) //nolint:errcheck // missing cookie means no token

		result := verifier.Verify(token)
		if !result.Valid {
			c.Redirect(http.StatusFound, routes.LoginPath)
			return
		}

		c.Redirect(http.StatusFound, routes.Home(result.Role))
	}
}

// validates the cookie if present but doesn't require it
func OptionalAuthMiddleware(verifier *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(AccessTokenCookie)
		if err == nil && token != "" {
			if result := verifier.Verify(token); result.Valid {
				setIdentity(c, result)
			}
		}

		c.Next()
	}
}

// extracts user_id from context after the gate
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ContextUserID)

	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	return id, ok
}

// extracts the role from context after the gate
func GetRole(c *gin.Context) (routes.Role, bool) {
	role, exists := c.Get(ContextRole)

	if !exists {
		return "", false
	}

	r, ok := role.(routes.Role)
	return r, ok
}

// sends paths with dot segments or doubled slashes to their clean form, so
// the path that gets classified is always the path gin routed
func redirectToClean(c *gin.Context) bool {
	raw := c.Request.URL.Path

	clean := path.Clean("/" + raw)
	if clean == raw {
		return false
	}

	if q := c.Request.URL.RawQuery; q != "" {
		clean += "?" + q
	}

	c.Redirect(http.StatusFound, clean)
	c.Abort()

	return true
}

func setIdentity(c *gin.Context, result Result) {
	if !result.Valid {
		return
	}

	c.Set(ContextUserID, result.Subject)
	c.Set(ContextRole, result.Role)
	c.Set(ContextEmail, result.Email)
}
