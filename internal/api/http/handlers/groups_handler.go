package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/suportehub/helpdesk-service/internal/api/dto"
	"github.com/suportehub/helpdesk-service/internal/domain"
	"github.com/suportehub/helpdesk-service/internal/service"
	apperrors "github.com/suportehub/helpdesk-service/pkg/util"
)

// GroupsHandler manages assignment group endpoints.
type GroupsHandler struct {
	service *service.GroupService
}

// NewGroupsHandler constructs handler.
func NewGroupsHandler(groupService *service.GroupService) *GroupsHandler {
	return &GroupsHandler{service: groupService}
}

// ListGroups GET /assignment-groups.
func (h *GroupsHandler) ListGroups(c *fiber.Ctx) error {
	groups, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		items = append(items, groupResponse(&groups[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetGroup GET /assignment-groups/:id.
func (h *GroupsHandler) GetGroup(c *fiber.Ctx) error {
	group, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": groupResponse(group)})
}

// CreateGroup POST /assignment-groups.
func (h *GroupsHandler) CreateGroup(c *fiber.Ctx) error {
	var req dto.GroupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	group, err := h.service.Create(c.UserContext(), service.GroupInput{
		Key:         req.Key,
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": groupResponse(group)})
}

// UpdateGroup PATCH /assignment-groups/:id.
func (h *GroupsHandler) UpdateGroup(c *fiber.Ctx) error {
	var req dto.GroupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	group, err := h.service.Update(c.UserContext(), c.Params("id"), service.GroupInput{
		Key:         req.Key,
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": groupResponse(group)})
}

// DeleteGroup DELETE /assignment-groups/:id.
func (h *GroupsHandler) DeleteGroup(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func groupResponse(group *domain.AssignmentGroup) dto.GroupResponse {
	return dto.GroupResponse{
		ID:          group.ID,
		Key:         group.Key,
		Name:        group.Name,
		Color:       group.Color,
		Description: group.Description,
		CreatedAt:   group.CreatedAt,
		UpdatedAt:   group.UpdatedAt,
	}
}
