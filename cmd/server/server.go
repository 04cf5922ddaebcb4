package main

import (
	"fmt"

	"codeberg.org/edtech/portal/api/rest/pages"
	"codeberg.org/edtech/portal/internal/auth"
	"codeberg.org/edtech/portal/internal/config"
	"codeberg.org/edtech/portal/internal/logger"
	"codeberg.org/edtech/portal/internal/routes"
	"codeberg.org/edtech/portal/internal/session"
	"github.com/gin-gonic/gin"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	rules := routes.DefaultRules()
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid route rules: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(logger.GinMiddleware(), gin.Recovery())
	router.SetHTMLTemplate(pages.Templates())

	server := &Server{
		config:   cfg,
		verifier: auth.NewVerifier(cfg.JWTSecret, auth.Issuer),
		rules:    rules,
		backend:  session.NewClient(cfg.APIURL),
		router:   router,
	}

	if err := RegisterRoutes(router, server); err != nil {
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	logger.Info("server configured",
		"environment", cfg.Environment,
		"api_url", cfg.APIURL,
		"public_paths", len(rules.PublicExact),
		"role_prefixes", len(rules.RolePrefixes),
	)

	return server, nil
}
