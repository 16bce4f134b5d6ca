package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nimbus-sec/authgate/dto"
	"github.com/nimbus-sec/authgate/shared"
)

type AdminHandler struct {
	rateLimitSvc RateLimitServiceInterface
}

func NewAdminHandler(rateLimitSvc RateLimitServiceInterface) *AdminHandler {
	return &AdminHandler{rateLimitSvc: rateLimitSvc}
}

// @Summary Rate limit overview
// @Description Current endpoint budgets and tracked identifier count
// @Tags admin
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Success 200 {object} shared.DataBody{data=dto.RateLimitStatsResponse}
// @Failure 401 {object} shared.ErrorBody
// @Router /api/v1/admin/rate-limits [get]
func (h *AdminHandler) GetRateLimits(c *fiber.Ctx) error {
	resp := dto.RateLimitStatsResponse{
		Configs:            h.rateLimitSvc.Configs(),
		TrackedIdentifiers: h.rateLimitSvc.TrackedIdentifiers(),
	}

	return shared.ResponseData(c, http.StatusOK, resp)
}

// @Summary Reset a rate limit bucket
// @Description Clear the recorded history for one identifier/endpoint pair
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param resetRequest body dto.RateLimitResetRequest true "Identifier and endpoint type"
// @Success 200 {object} shared.MessageBody
// @Failure 404 {object} shared.ErrorBody
// @Router /api/v1/admin/rate-limits/reset [post]
func (h *AdminHandler) ResetRateLimit(c *fiber.Ctx) error {
	var req dto.RateLimitResetRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	if !h.rateLimitSvc.Reset(req.Identifier, req.EndpointType) {
		return shared.NewNotFoundError("no history for identifier")
	}

	return shared.ResponseMessage(c, http.StatusOK, "rate limit history cleared")
}
