package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nimbus-sec/authgate/shared"
)

type KnowledgeHandler struct {
	knowledgeSvc KnowledgeServiceInterface
}

func NewKnowledgeHandler(knowledgeSvc KnowledgeServiceInterface) *KnowledgeHandler {
	return &KnowledgeHandler{knowledgeSvc: knowledgeSvc}
}

// @Summary List knowledge base entries
// @Description Public listing. Authenticated callers are flagged in the response.
// @Tags knowledge
// @Produce json
// @Param limit query int false "Max entries to return" default(20)
// @Success 200 {object} shared.DataBody{data=dto.KnowledgeListResponse}
// @Router /api/v1/knowledge [get]
func (h *KnowledgeHandler) GetEntries(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	userID, _ := c.Locals(shared.UserID).(string)

	resp, err := h.knowledgeSvc.GetEntries(limit, userID != "")
	if err != nil {
		return err
	}

	return shared.ResponseData(c, http.StatusOK, resp)
}
