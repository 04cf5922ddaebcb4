package pages

import (
	"codeberg.org/edtech/portal/internal/auth"
	"codeberg.org/edtech/portal/internal/routes"
	"github.com/gin-gonic/gin"
)

// registers the landing page, the role pages and the session endpoint.
// only /student and /teacher run the gate; admin pages carry their own
// page-level role check.
func RegisterRoutes(router *gin.Engine, verifier *auth.Verifier, rules *routes.Rules) {
	router.GET("/", HomeHandler)
	router.GET("/dashboard", auth.DashboardRedirect(verifier))

	gate := auth.Gate(verifier, rules)

	student := router.Group("/student", gate)
	{
		student.GET("", PageHandler(routes.RoleStudent))
		student.GET("/*page", PageHandler(routes.RoleStudent))
	}

	teacher := router.Group("/teacher", gate)
	{
		teacher.GET("", PageHandler(routes.RoleTeacher))
		teacher.GET("/*page", PageHandler(routes.RoleTeacher))
	}

	admin := router.Group("/admin", auth.RequireRole(verifier, routes.RoleAdmin))
	{
		admin.GET("", PageHandler(routes.RoleAdmin))
		admin.GET("/*page", PageHandler(routes.RoleAdmin))
	}

	router.GET("/api/v1/session", auth.OptionalAuthMiddleware(verifier), GetSessionHandler)
}
