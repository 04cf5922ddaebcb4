package pages

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/edtech/portal/internal/auth"
	"codeberg.org/edtech/portal/internal/routes"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "pages-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter() (*gin.Engine, *auth.Verifier) {
	verifier := auth.NewVerifier(testSecret, auth.Issuer)

	router := gin.New()
	router.SetHTMLTemplate(Templates())
	RegisterRoutes(router, verifier, routes.DefaultRules())

	return router, verifier
}

func get(router http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: token})
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func tokenFor(t *testing.T, v *auth.Verifier, role routes.Role) string {
	t.Helper()

	token, err := v.Issue("u-"+string(role), role, string(role)+"@example.com", time.Hour)
	require.NoError(t, err)

	return token
}

func TestHome_IsPublic(t *testing.T) {
	router, _ := newRouter()

	rec := get(router, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/auth/login")
}

func TestRolePages_RenderForOwner(t *testing.T) {
	router, v := newRouter()

	testCases := []struct {
		role  routes.Role
		path  string
		title string
	}{
		{routes.RoleStudent, "/student/dashboard", "Dashboard"},
		{routes.RoleStudent, "/student/ai-tutor", "AI Tutor"},
		{routes.RoleTeacher, "/teacher/media-toolkit/slides", "Slides"},
		{routes.RoleTeacher, "/teacher/reports", "Reports"},
		{routes.RoleAdmin, "/admin/curriculum", "Curriculum"},
	}

	for _, tc := range testCases {
		rec := get(router, tc.path, tokenFor(t, v, tc.role))

		assert.Equal(t, http.StatusOK, rec.Code, tc.path)
		assert.Contains(t, rec.Body.String(), tc.title, tc.path)
		assert.Contains(t, rec.Body.String(), string(tc.role)+"@example.com", tc.path)
	}
}

func TestRolePages_RedirectOtherRolesHome(t *testing.T) {
	router, v := newRouter()

	testCases := []struct {
		path     string
		role     routes.Role
		location string
	}{
		{"/student/dashboard", routes.RoleTeacher, "/teacher/dashboard"},
		{"/teacher/library", routes.RoleStudent, "/student/dashboard"},
		{"/admin/settings", routes.RoleStudent, "/student/dashboard"},
		{"/student/achievements", routes.RoleAdmin, "/admin/dashboard"},
	}

	for _, tc := range testCases {
		rec := get(router, tc.path, tokenFor(t, v, tc.role))

		assert.Equal(t, http.StatusFound, rec.Code, tc.path)
		assert.Equal(t, tc.location, rec.Header().Get("Location"), tc.path)
	}
}

func TestRolePages_RequireSession(t *testing.T) {
	router, _ := newRouter()

	for _, p := range []string{"/student/dashboard", "/teacher/dashboard", "/admin/dashboard"} {
		rec := get(router, p, "")

		assert.Equal(t, http.StatusFound, rec.Code, p)
		assert.Equal(t, "/auth/login", rec.Header().Get("Location"), p)
	}

	rec := get(router, "/student/dashboard", "not-a-jwt")
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestRolePages_UnknownPageIsNotFound(t *testing.T) {
	router, v := newRouter()

	rec := get(router, "/student/teacher-only", tokenFor(t, v, routes.RoleStudent))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "/student/dashboard")
}

func TestRolePages_RootRedirectsToDashboard(t *testing.T) {
	router, v := newRouter()

	rec := get(router, "/teacher", tokenFor(t, v, routes.RoleTeacher))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/teacher/dashboard", rec.Header().Get("Location"))
}

func TestDashboardRedirect(t *testing.T) {
	router, v := newRouter()

	rec := get(router, "/dashboard", tokenFor(t, v, routes.RoleAdmin))
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))

	rec = get(router, "/dashboard", "")
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestGetSessionHandler(t *testing.T) {
	router, v := newRouter()

	rec := get(router, "/api/v1/session", tokenFor(t, v, routes.RoleTeacher))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u-teacher", resp.UserID)
	assert.Equal(t, routes.RoleTeacher, resp.Role)
	assert.Equal(t, "/teacher/dashboard", resp.Home)

	rec = get(router, "/api/v1/session", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCatalog_EveryRoleHasDashboard(t *testing.T) {
	for _, role := range []routes.Role{routes.RoleStudent, routes.RoleTeacher, routes.RoleAdmin} {
		_, ok := routes.LookupPage(role, "dashboard")
		assert.True(t, ok, string(role))

		for _, item := range navFor(role) {
			assert.True(t, strings.HasPrefix(item.Path, "/"+string(role)+"/"), item.Path)
		}
	}
}
