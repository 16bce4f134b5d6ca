package handlers

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-sec/authgate/dto"
	"github.com/nimbus-sec/authgate/shared"
)

type stubAccountService struct {
	registerResp *dto.RegisterResponse
	registerErr  error
	loginResp    *dto.AuthResponse
	loginErr     error

	loggedOutAccess  string
	loggedOutRefresh string
	resetRequested   string
}

func (s *stubAccountService) Register(dto.RegisterRequest) (*dto.RegisterResponse, error) {
	return s.registerResp, s.registerErr
}

func (s *stubAccountService) Login(dto.LoginRequest) (*dto.AuthResponse, error) {
	return s.loginResp, s.loginErr
}

func (s *stubAccountService) RefreshSession(string) (*dto.AuthResponse, error) {
	return s.loginResp, s.loginErr
}

func (s *stubAccountService) Logout(accessToken, refreshToken string) {
	s.loggedOutAccess = accessToken
	s.loggedOutRefresh = refreshToken
}

func (s *stubAccountService) RequestPasswordReset(email string) {
	s.resetRequested = email
}

func (s *stubAccountService) ConfirmPasswordReset(string, string) error { return nil }

func (s *stubAccountService) GetProfile(string) (*dto.ProfileResponse, error) { return nil, nil }

func (s *stubAccountService) UpdateProfile(string, dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	return nil, nil
}

type stubJWTService struct{}

func (stubJWTService) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", shared.ErrMissingAuthHeader
	}
	return "extracted-token", nil
}

func newHandlerApp(h *AuthHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := shared.GetAppError(err); ok {
				return shared.ResponseError(c, appErr.StatusCode, appErr.Message, appErr.ErrorCode)
			}
			return shared.ResponseError(c, http.StatusInternalServerError, "internal server error", shared.CodeInternalError)
		},
	})
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)
	app.Post("/logout", h.Logout)
	app.Post("/password/reset", h.RequestPasswordReset)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body, authHeader string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if authHeader != "" {
		req.Header.Set(fiber.HeaderAuthorization, authHeader)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(respBody)
}

func TestRegisterHandlerSuccess(t *testing.T) {
	t.Parallel()
	stub := &stubAccountService{
		registerResp: &dto.RegisterResponse{Success: true, Message: "registration successful", UserID: "user-1"},
	}
	app := newHandlerApp(NewAuthHandler(stub, stubJWTService{}))

	status, body := postJSON(t, app, "/register",
		`{"email":"a@example.com","password":"Str0ngEnough"}`, "")
	require.Equal(t, http.StatusCreated, status)
	require.Contains(t, body, "user-1")
}

func TestRegisterHandlerValidation(t *testing.T) {
	t.Parallel()
	stub := &stubAccountService{}
	app := newHandlerApp(NewAuthHandler(stub, stubJWTService{}))

	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"Str0ngEnough"}`},
		{"bad email", `{"email":"not-an-email","password":"Str0ngEnough"}`},
		{"missing password", `{"email":"a@example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postJSON(t, app, "/register", tt.body, "")
			require.Equal(t, http.StatusBadRequest, status)
			require.Contains(t, body, shared.CodeValidationFailed)
			require.Contains(t, body, `"errors"`)
		})
	}
}

func TestLoginHandlerPassesThroughError(t *testing.T) {
	t.Parallel()
	stub := &stubAccountService{
		loginErr: shared.NewUnauthorizedError(shared.CodeInvalidCredentials, "invalid email or password"),
	}
	app := newHandlerApp(NewAuthHandler(stub, stubJWTService{}))

	status, body := postJSON(t, app, "/login",
		`{"email":"a@example.com","password":"WrongPass1"}`, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Contains(t, body, shared.CodeInvalidCredentials)
}

func TestLogoutHandlerRevokesBothTokens(t *testing.T) {
	t.Parallel()
	stub := &stubAccountService{}
	app := newHandlerApp(NewAuthHandler(stub, stubJWTService{}))

	status, _ := postJSON(t, app, "/logout",
		`{"refresh_token":"the-refresh-token"}`, "Bearer anything")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "extracted-token", stub.loggedOutAccess)
	require.Equal(t, "the-refresh-token", stub.loggedOutRefresh)
}

func TestLogoutHandlerWithoutBody(t *testing.T) {
	t.Parallel()
	stub := &stubAccountService{}
	app := newHandlerApp(NewAuthHandler(stub, stubJWTService{}))

	status, _ := postJSON(t, app, "/logout", `{}`, "")
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, stub.loggedOutAccess)
	require.Empty(t, stub.loggedOutRefresh)
}

func TestPasswordResetHandlerAlwaysSucceeds(t *testing.T) {
	t.Parallel()
	stub := &stubAccountService{}
	app := newHandlerApp(NewAuthHandler(stub, stubJWTService{}))

	status, body := postJSON(t, app, "/password/reset",
		`{"email":"ghost@example.com"}`, "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"success":true`)
	require.Equal(t, "ghost@example.com", stub.resetRequested)
}
