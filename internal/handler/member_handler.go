package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/fellowship-hq/fellowship-api/internal/dto"
	"github.com/fellowship-hq/fellowship-api/internal/service"
	"github.com/fellowship-hq/fellowship-api/internal/utils"
)

// MemberHandler serves member profile endpoints.
type MemberHandler struct {
	members service.MemberService
	tags    service.TagService
	logger  zerolog.Logger
}

// NewMemberHandler constructs the handler instance.
func NewMemberHandler(members service.MemberService, tags service.TagService, logger zerolog.Logger) *MemberHandler {
	return &MemberHandler{
		members: members,
		tags:    tags,
		logger:  logger.With().Str("component", "member_handler").Logger(),
	}
}

// Register wires the member profile routes.
func (h *MemberHandler) Register(router fiber.Router) {
	router.Get("/me", h.profile)
	router.Get("/me/tags", h.activeTags)
	router.Get("/me/notifications", h.notifications)
}

// RegisterManaged wires the routes restricted to fellowship managers.
func (h *MemberHandler) RegisterManaged(router fiber.Router) {
	router.Patch("/me", h.directUpdate)
}

func (h *MemberHandler) profile(c *fiber.Ctx) error {
	memberID := memberIDFromContext(c)
	if memberID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	result, err := h.members.Profile(c.Context(), memberID)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load profile")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load profile")
	}

	return utils.SendSuccess(c, "profile retrieved", result)
}

func (h *MemberHandler) activeTags(c *fiber.Ctx) error {
	memberID := memberIDFromContext(c)
	if memberID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	result, err := h.tags.GetActiveTags(c.Context(), memberID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load active tags")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load active tags")
	}

	return utils.SendSuccess(c, "active tags retrieved", result)
}

func (h *MemberHandler) notifications(c *fiber.Ctx) error {
	memberID := memberIDFromContext(c)
	if memberID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	result, err := h.members.Notifications(c.Context(), memberID, limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load notifications")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load notifications")
	}

	return utils.SendSuccess(c, "notifications retrieved", result)
}

func (h *MemberHandler) directUpdate(c *fiber.Ctx) error {
	memberID := memberIDFromContext(c)
	if memberID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var req dto.MemberUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.members.DirectUpdate(c.Context(), memberID, req)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrMemberNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update member")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update member")
		}
	}

	return utils.SendSuccess(c, "member updated", result)
}
