package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/suportehub/helpdesk-service/internal/service"
	apperrors "github.com/suportehub/helpdesk-service/pkg/util"
)

// InviteCodesHandler manages agent invitation code endpoints.
type InviteCodesHandler struct {
	service *service.AuthService
}

// NewInviteCodesHandler constructs handler.
func NewInviteCodesHandler(authService *service.AuthService) *InviteCodesHandler {
	return &InviteCodesHandler{service: authService}
}

// ValidateCode GET /invite-codes/:code. Reports code state without consuming
// it, so registration forms can give immediate feedback.
func (h *InviteCodesHandler) ValidateCode(c *fiber.Ctx) error {
	status, err := h.service.ValidateCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": status})
}

// GenerateCodes POST /invite-codes.
func (h *InviteCodesHandler) GenerateCodes(c *fiber.Ctx) error {
	var req struct {
		Count int `json:"count"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Count <= 0 || req.Count > 100 {
		return apperrors.NewValidationError("count must be between 1 and 100", map[string]any{"count": req.Count})
	}
	codes, err := h.service.GenerateCodes(c.UserContext(), req.Count)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": codes})
}
