package main

import (
	"codeberg.org/edtech/portal/internal/auth"
	"codeberg.org/edtech/portal/internal/config"
	"codeberg.org/edtech/portal/internal/routes"
	"codeberg.org/edtech/portal/internal/session"
	"github.com/gin-gonic/gin"
)

// holds all dependencies and state for the web frontend
type Server struct {
	config   *config.Config
	verifier *auth.Verifier
	rules    *routes.Rules
	backend  *session.Client
	router   *gin.Engine
}
