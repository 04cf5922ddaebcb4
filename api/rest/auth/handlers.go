package auth

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/edtech/portal/internal/auth"
	"codeberg.org/edtech/portal/internal/errors"
	"codeberg.org/edtech/portal/internal/logger"
	"codeberg.org/edtech/portal/internal/routes"
	"codeberg.org/edtech/portal/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	registerPath = "/auth/register"
	verifyPath   = "/auth/verify"
)

// creates the auth handlers. flash messages live in a signed cookie keyed
// by sessionSecret.
func NewHandlers(client *session.Client, sessionSecret string, secure bool) *Handlers {
	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Handlers{client: client, flash: store, secure: secure}
}

// LoginPageHandler godoc
// @Summary Login page
// @Tags auth
// @Produce html
// @Success 200 {string} string "login form"
// @Router /auth/login [get]
func (h *Handlers) LoginPageHandler(c *gin.Context) {
	data := h.flashes(c)
	data["Title"] = "Sign in"
	data["Email"] = c.Query("email")

	c.HTML(http.StatusOK, "login.tmpl", data)
}

// LoginHandler godoc
// @Summary Log in
// @Description Forwards the credentials to the backend and relays its session cookies
// @Tags auth
// @Accept x-www-form-urlencoded
// @Param email formData string true "email"
// @Param password formData string true "password"
// @Success 303 {string} string "redirect to the role dashboard"
// @Failure 303 {string} string "redirect back to the login form"
// @Failure 429 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *Handlers) LoginHandler(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, routes.LoginPath, "Please enter a valid email and password.")
		return
	}

	user, err := h.forward(c).Login(c.Request.Context(), session.Credentials{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		logger.Warn("login failed", "email", form.Email, "category", errors.Category(err), "error", err.Error())
		h.fail(c, routes.LoginPath, session.Message(err))
		return
	}

	logger.Info("user logged in", "user_id", user.ID, "role", user.Role.String())

	c.Redirect(http.StatusSeeOther, routes.Home(user.Role))
}

// RegisterPageHandler godoc
// @Summary Registration page
// @Tags auth
// @Produce html
// @Success 200 {string} string "registration form"
// @Router /auth/register [get]
func (h *Handlers) RegisterPageHandler(c *gin.Context) {
	data := h.flashes(c)
	data["Title"] = "Create an account"

	c.HTML(http.StatusOK, "register.tmpl", data)
}

// RegisterHandler godoc
// @Summary Register
// @Description Creates an unverified account; the backend emails a verification code
// @Tags auth
// @Accept x-www-form-urlencoded
// @Success 303 {string} string "redirect to the verification form"
// @Failure 429 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *Handlers) RegisterHandler(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, registerPath, "Please fill in every field. Passwords need at least 6 characters.")
		return
	}

	result, err := h.forward(c).Register(c.Request.Context(), session.Registration{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Grade:    form.Grade,
	})
	if err != nil {
		logger.Warn("registration failed", "email", form.Email, "category", errors.Category(err), "error", err.Error())
		h.fail(c, registerPath, session.Message(err))
		return
	}

	logger.Info("user registered", "user_id", result.UserID)

	message := result.Message
	if message == "" {
		message = "Check your inbox for a verification code."
	}

	h.notice(c, verifyPath, message)
}

// VerifyPageHandler godoc
// @Summary Email verification page
// @Tags auth
// @Produce html
// @Success 200 {string} string "verification form"
// @Router /auth/verify [get]
func (h *Handlers) VerifyPageHandler(c *gin.Context) {
	data := h.flashes(c)
	data["Title"] = "Verify your email"
	data["Code"] = c.Query("code")

	c.HTML(http.StatusOK, "verify.tmpl", data)
}

// VerifyHandler godoc
// @Summary Verify email
// @Tags auth
// @Accept x-www-form-urlencoded
// @Param code formData string true "verification code"
// @Success 303 {string} string "redirect to login"
// @Router /auth/verify [post]
func (h *Handlers) VerifyHandler(c *gin.Context) {
	var form VerifyForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, verifyPath, "Please enter the code from your email. It contains only letters and digits.")
		return
	}

	h.verify(c, form.Code)
}

// VerifyLinkHandler godoc
// @Summary Verify email from the emailed link
// @Tags auth
// @Param code path string true "verification code"
// @Success 303 {string} string "redirect to login"
// @Router /auth/verify/{code} [get]
func (h *Handlers) VerifyLinkHandler(c *gin.Context) {
	var form VerifyForm
	if err := c.ShouldBindUri(&form); err != nil {
		h.fail(c, verifyPath, "That verification link is not valid.")
		return
	}

	h.verify(c, form.Code)
}

// LogoutHandler godoc
// @Summary Log out
// @Description Ends the backend session if possible and always clears the session cookies
// @Tags auth
// @Success 303 {string} string "redirect to login"
// @Router /auth/logout [post]
func (h *Handlers) LogoutHandler(c *gin.Context) {
	if err := h.forward(c).Logout(c.Request.Context()); err != nil {
		logger.Warn("backend logout failed", "error", err.Error())
	}

	for _, name := range []string{auth.AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	c.Redirect(http.StatusSeeOther, routes.LoginPath)
}

// CurrentUserHandler godoc
// @Summary Current user
// @Description Profile of the signed-in user as the backend reports it
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/auth/user [get]
// @Security CookieAuth
func (h *Handlers) CurrentUserHandler(c *gin.Context) {
	user, err := h.forward(c).CurrentUser(c.Request.Context())
	if err != nil {
		if stderrors.Is(err, session.ErrUnauthorized) {
			errors.Unauthorized(c, "")
			return
		}

		errors.BadGateway(c, "failed to load user", err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{User: user})
}

func (h *Handlers) verify(c *gin.Context, code string) {
	message, err := h.forward(c).VerifyEmail(c.Request.Context(), code)
	if err != nil {
		logger.Warn("email verification failed", "error", err.Error())
		h.fail(c, verifyPath, session.Message(err))
		return
	}

	if message == "" {
		message = "Email verified. You can sign in now."
	}

	h.notice(c, routes.LoginPath, message)
}

// client acting for this browser: its cookies go out, the backend's
// Set-Cookie headers come back scoped to this host
func (h *Handlers) forward(c *gin.Context) *session.Client {
	return h.client.Forward(c.Request.Cookies(), func(cookies []*http.Cookie) {
		for _, ck := range cookies {
			relayed := *ck
			relayed.Domain = ""
			if relayed.Path == "" {
				relayed.Path = "/"
			}

			http.SetCookie(c.Writer, &relayed)
		}
	})
}

func (h *Handlers) fail(c *gin.Context, to, message string) {
	h.addFlash(c, flashError, message)
	c.Redirect(http.StatusSeeOther, to)
}

func (h *Handlers) notice(c *gin.Context, to, message string) {
	h.addFlash(c, flashNotice, message)
	c.Redirect(http.StatusSeeOther, to)
}

func (h *Handlers) addFlash(c *gin.Context, key, message string) {
	sess, _ := h.flash.Get(c.Request, flashSessionName) //nolint:errcheck // a tampered cookie yields a fresh session

	sess.AddFlash(message, key)

	if err := sess.Save(c.Request, c.Writer); err != nil {
		logger.ErrorErr(err, "failed to save flash")
	}
}

// pops pending flashes into template data
func (h *Handlers) flashes(c *gin.Context) gin.H {
	sess, _ := h.flash.Get(c.Request, flashSessionName) //nolint:errcheck // a tampered cookie yields a fresh session

	data := gin.H{
		"Errors":  sess.Flashes(flashError),
		"Notices": sess.Flashes(flashNotice),
	}

	if err := sess.Save(c.Request, c.Writer); err != nil {
		logger.ErrorErr(err, "failed to clear flashes")
	}

	return data
}
