package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nimbus-sec/authgate/dto"
	"github.com/nimbus-sec/authgate/shared"
)

type ProfileHandler struct {
	accountSvc AccountServiceInterface
}

func NewProfileHandler(accountSvc AccountServiceInterface) *ProfileHandler {
	return &ProfileHandler{accountSvc: accountSvc}
}

// @Summary Get own profile
// @Tags profile
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.DataBody{data=dto.ProfileResponse}
// @Failure 401 {object} shared.ErrorBody
// @Router /api/v1/profile [get]
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.accountSvc.GetProfile(userID)
	if err != nil {
		return err
	}

	return shared.ResponseData(c, http.StatusOK, resp)
}

// @Summary Update own profile
// @Tags profile
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param updateRequest body dto.UpdateProfileRequest true "Profile fields to update"
// @Success 200 {object} shared.DataBody{data=dto.ProfileResponse}
// @Failure 401 {object} shared.ErrorBody
// @Router /api/v1/profile [put]
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.accountSvc.UpdateProfile(userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseData(c, http.StatusOK, resp)
}
