package auth

import (
	"codeberg.org/edtech/portal/internal/errors"
	"codeberg.org/edtech/portal/internal/logger"
	"github.com/gin-gonic/gin"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// registers the login, registration, verification and logout pages.
// form submissions are throttled per client IP at loginRate, in ulule
// format such as "10-M".
func RegisterRoutes(router *gin.Engine, h *Handlers, loginRate string) error {
	throttle, err := Throttle(loginRate)
	if err != nil {
		return err
	}

	authGroup := router.Group("/auth")
	{
		authGroup.GET("/login", h.LoginPageHandler)
		authGroup.POST("/login", throttle, h.LoginHandler)
		authGroup.GET("/register", h.RegisterPageHandler)
		authGroup.POST("/register", throttle, h.RegisterHandler)
		authGroup.GET("/verify", h.VerifyPageHandler)
		authGroup.POST("/verify", throttle, h.VerifyHandler)
		authGroup.GET("/verify/:code", h.VerifyLinkHandler)
		authGroup.POST("/logout", h.LogoutHandler)
	}

	router.GET("/api/v1/auth/user", h.CurrentUserHandler)

	return nil
}

// per-IP rate limit backed by an in-memory store
func Throttle(formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}

	instance := limiter.New(memory.NewStore(), rate)

	return mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			logger.Warn("auth form throttled", "ip", c.ClientIP(), "path", c.Request.URL.Path)
			errors.TooManyRequests(c, "too many attempts, try again later")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			errors.InternalError(c, "rate limiter failed", err)
		}),
	), nil
}
