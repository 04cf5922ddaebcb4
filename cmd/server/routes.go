package main

import (
	"net/http"
	"strings"

	"codeberg.org/edtech/portal/api/rest/auth"
	"codeberg.org/edtech/portal/api/rest/health"
	"codeberg.org/edtech/portal/api/rest/pages"
	"codeberg.org/edtech/portal/internal/errors"
	"github.com/gin-gonic/gin"
)

// sets up all page routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	router.Use(CORSMiddleware(server.config.CORSOrigins))
	router.GET("/health", health.Handler(server.config.APIURL))
	router.GET("/ping", health.PingHandler)

	handlers := auth.NewHandlers(server.backend, server.config.SessionSecret, server.config.IsProduction())
	if err := auth.RegisterRoutes(router, handlers, server.config.LoginRateLimit); err != nil {
		return err
	}

	pages.RegisterRoutes(router, server.verifier, server.rules)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			errors.NotFound(c, "endpoint")
			return
		}

		c.HTML(http.StatusNotFound, "not_found.tmpl", gin.H{"Title": "Not found", "Home": "/"})
	})

	return nil
}
