package services

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-sec/authgate/shared"
)

func newTestAuthMiddleware() (*AuthMiddleware, *JWTService, *RevocationService) {
	jwtSvc := newTestJWTService()
	revocationSvc := newTestRevocationService()

	mw := &AuthMiddleware{
		jwtSvc:        jwtSvc,
		revocationSvc: revocationSvc,
		monitoringSvc: &MonitoringService{},
	}
	return mw, jwtSvc, revocationSvc
}

// newGateApp wires the middleware under test into a minimal app that echoes
// the resolved identity, using the production error handler.
func newGateApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: (&HttpService{}).handleError,
		JSONEncoder:  shared.JSONMarshal,
		JSONDecoder:  shared.JSONUnmarshal,
	})

	chain := append(handlers, func(c *fiber.Ctx) error {
		userID, _ := c.Locals(shared.UserID).(string)
		return shared.ResponseMessage(c, http.StatusOK, "user:"+userID)
	})
	app.Get("/protected", chain...)
	return app
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set(fiber.HeaderAuthorization, authHeader)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRequiredAuthMissingHeader(t *testing.T) {
	t.Parallel()
	mw, _, _ := newTestAuthMiddleware()
	app := newGateApp(mw.RequiredAuth())

	status, body := doRequest(t, app, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Contains(t, body, shared.CodeMissingToken)
	require.Contains(t, body, `"success":false`)
}

func TestRequiredAuthMalformedHeader(t *testing.T) {
	t.Parallel()
	mw, _, _ := newTestAuthMiddleware()
	app := newGateApp(mw.RequiredAuth())

	for _, header := range []string{"Basic abc", "Bearer", "Bearer a b"} {
		status, body := doRequest(t, app, header)
		require.Equal(t, http.StatusUnauthorized, status, "header %q", header)
		require.Contains(t, body, shared.CodeInvalidAuthHeader)
	}
}

func TestRequiredAuthExpiredToken(t *testing.T) {
	t.Parallel()
	mw, jwtSvc, _ := newTestAuthMiddleware()
	app := newGateApp(mw.RequiredAuth())

	token, err := jwtSvc.Issue("user-123", shared.TokenKindAccess, -time.Minute, nil)
	require.NoError(t, err)

	status, body := doRequest(t, app, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Contains(t, body, shared.CodeTokenExpired)
}

func TestRequiredAuthInvalidToken(t *testing.T) {
	t.Parallel()
	mw, _, _ := newTestAuthMiddleware()
	app := newGateApp(mw.RequiredAuth())

	status, body := doRequest(t, app, "Bearer not.a.token")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Contains(t, body, shared.CodeInvalidToken)
}

func TestRequiredAuthRevokedToken(t *testing.T) {
	t.Parallel()
	mw, jwtSvc, revocationSvc := newTestAuthMiddleware()
	app := newGateApp(mw.RequiredAuth())

	token, err := jwtSvc.Issue("user-123", shared.TokenKindAccess, time.Hour, nil)
	require.NoError(t, err)

	status, _ := doRequest(t, app, "Bearer "+token)
	require.Equal(t, http.StatusOK, status)

	revocationSvc.Revoke(token)

	status, body := doRequest(t, app, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Contains(t, body, shared.CodeInvalidToken)
}

func TestRequiredAuthValidToken(t *testing.T) {
	t.Parallel()
	mw, jwtSvc, _ := newTestAuthMiddleware()
	app := newGateApp(mw.RequiredAuth())

	token, err := jwtSvc.Issue("user-123", shared.TokenKindAccess, time.Hour, nil)
	require.NoError(t, err)

	status, body := doRequest(t, app, "Bearer "+token)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "user:user-123")
}

func TestOptionalAuthAnonymous(t *testing.T) {
	t.Parallel()
	mw, jwtSvc, _ := newTestAuthMiddleware()
	app := newGateApp(mw.OptionalAuth())

	// Missing, malformed and expired all pass through anonymously.
	status, body := doRequest(t, app, "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "user:\"")

	status, _ = doRequest(t, app, "Bearer garbage.token.here")
	require.Equal(t, http.StatusOK, status)

	expired, err := jwtSvc.Issue("user-123", shared.TokenKindAccess, -time.Minute, nil)
	require.NoError(t, err)
	status, body = doRequest(t, app, "Bearer "+expired)
	require.Equal(t, http.StatusOK, status)
	require.NotContains(t, body, "user-123")
}

func TestOptionalAuthWithToken(t *testing.T) {
	t.Parallel()
	mw, jwtSvc, _ := newTestAuthMiddleware()
	app := newGateApp(mw.OptionalAuth())

	token, err := jwtSvc.Issue("user-123", shared.TokenKindAccess, time.Hour, nil)
	require.NoError(t, err)

	status, body := doRequest(t, app, "Bearer "+token)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "user:user-123")
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	t.Parallel()
	mw, _, _ := newTestAuthMiddleware()

	// RequireRole without the auth gate in front: no identity, so 401.
	app := newGateApp(mw.RequireRole("admin"))

	status, body := doRequest(t, app, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Contains(t, body, shared.CodeAuthRequired)
}

func TestRequireRoleAuthenticated(t *testing.T) {
	t.Parallel()
	mw, jwtSvc, _ := newTestAuthMiddleware()
	app := newGateApp(mw.RequiredAuth(), mw.RequireRole("admin"))

	token, err := jwtSvc.Issue("user-123", shared.TokenKindAccess, time.Hour, nil)
	require.NoError(t, err)

	status, _ := doRequest(t, app, "Bearer "+token)
	require.Equal(t, http.StatusOK, status)
}
