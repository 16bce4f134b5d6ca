package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nimbus-sec/authgate/dto"
	"github.com/nimbus-sec/authgate/shared"
)

type AuthHandler struct {
	accountSvc AccountServiceInterface
	jwtSvc     JWTServiceInterface
}

func NewAuthHandler(accountSvc AccountServiceInterface, jwtSvc JWTServiceInterface) *AuthHandler {
	return &AuthHandler{
		accountSvc: accountSvc,
		jwtSvc:     jwtSvc,
	}
}

// @Summary Register a new user
// @Description Create a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.RegisterResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.accountSvc.Register(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, resp)
}

// @Summary Login user
// @Description Authenticate user and return an access/refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} shared.ErrorBody
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.accountSvc.Login(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, resp)
}

// @Summary Refresh access token
// @Description Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param refreshRequest body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} shared.ErrorBody
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.accountSvc.RefreshSession(req.RefreshToken)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, resp)
}

// @Summary Logout user
// @Description Revoke the presented access token and, if supplied, the refresh token. Always succeeds.
// @Tags auth
// @Accept json
// @Produce json
// @Param logoutRequest body dto.LogoutRequest false "Optional refresh token to revoke"
// @Success 200 {object} shared.MessageBody
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	// Body is optional; a bare logout still revokes the bearer token.
	var req dto.LogoutRequest
	_ = c.BodyParser(&req)

	accessToken, _ := h.jwtSvc.ExtractTokenFromHeader(c.Get(fiber.HeaderAuthorization))

	h.accountSvc.Logout(accessToken, req.RefreshToken)

	return shared.ResponseMessage(c, http.StatusOK, "logged out successfully")
}

// @Summary Request a password reset
// @Description Send a password reset email. The response does not reveal whether the account exists.
// @Tags auth
// @Accept json
// @Produce json
// @Param resetRequest body dto.PasswordResetRequest true "Account email"
// @Success 200 {object} shared.MessageBody
// @Router /api/v1/auth/password/reset [post]
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	h.accountSvc.RequestPasswordReset(req.Email)

	return shared.ResponseMessage(c, http.StatusOK, "if the account exists, a reset email has been sent")
}

// @Summary Confirm a password reset
// @Description Apply a new password using a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param confirmRequest body dto.PasswordResetConfirmRequest true "Reset token and new password"
// @Success 200 {object} shared.MessageBody
// @Failure 401 {object} shared.ErrorBody
// @Router /api/v1/auth/password/reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	if err := h.accountSvc.ConfirmPasswordReset(req.Token, req.NewPassword); err != nil {
		return err
	}

	return shared.ResponseMessage(c, http.StatusOK, "password has been reset")
}
