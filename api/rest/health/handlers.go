package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// service name reported by the health endpoint
const serviceName = "edtech-portal"

// Version is set at build time via -ldflags
var Version = "dev"

// Handler godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Router /health [get]
func Handler(backendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, Response{
			Status:  "healthy",
			Service: serviceName,
			Version: Version,
			Backend: backendURL,
		})
	}
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
