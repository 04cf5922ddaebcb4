package pages

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"codeberg.org/edtech/portal/internal/auth"
	"codeberg.org/edtech/portal/internal/errors"
	"codeberg.org/edtech/portal/internal/routes"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// parses the embedded page templates
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))
}

// public landing page
func HomeHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "home.tmpl", gin.H{"Title": "Welcome"})
}

// renders a role page; the route group's middleware has already
// authorized the request
func PageHandler(role routes.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := strings.Trim(c.Param("page"), "/")

		if page == "" {
			c.Redirect(http.StatusFound, routes.Home(role))
			return
		}

		item, ok := routes.LookupPage(role, page)
		if !ok {
			c.HTML(http.StatusNotFound, "not_found.tmpl", gin.H{"Title": "Not found", "Home": routes.Home(role)})
			return
		}

		userID, _ := auth.GetUserID(c)

		c.HTML(http.StatusOK, "dashboard.tmpl", DashboardView{
			Title:  item.Title,
			Role:   role,
			Page:   item.Path,
			UserID: userID,
			Email:  c.GetString(auth.ContextEmail),
			Nav:    navFor(role),
		})
	}
}

// GetSessionHandler godoc
// @Summary Current session
// @Description Claims of the session cookie, if it is valid
// @Tags session
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/session [get]
func GetSessionHandler(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	role, _ := auth.GetRole(c)

	c.JSON(http.StatusOK, SessionResponse{
		UserID: userID,
		Role:   role,
		Email:  c.GetString(auth.ContextEmail),
		Home:   routes.Home(role),
	})
}
