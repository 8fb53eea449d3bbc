package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/fellowship-hq/fellowship-api/internal/dto"
	"github.com/fellowship-hq/fellowship-api/internal/service"
	"github.com/fellowship-hq/fellowship-api/internal/utils"
)

// TagHandler serves the manager-facing tag management endpoints.
type TagHandler struct {
	service service.TagService
	logger  zerolog.Logger
}

// NewTagHandler constructs the handler instance.
func NewTagHandler(service service.TagService, logger zerolog.Logger) *TagHandler {
	return &TagHandler{
		service: service,
		logger:  logger.With().Str("component", "tag_handler").Logger(),
	}
}

// RegisterManaged wires the tag routes restricted to fellowship managers.
func (h *TagHandler) RegisterManaged(router fiber.Router) {
	router.Post("/assign", h.assign)
	router.Post("/bulk-assign", h.bulkAssign)
	router.Delete("/members/:memberId/:tagName", h.remove)
}

func (h *TagHandler) assign(c *fiber.Ctx) error {
	var req dto.AssignTagRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Assign(c.Context(), service.AssignTagInput{
		MemberID:   req.MemberID,
		TagName:    req.TagName,
		TagType:    req.TagType,
		AssignedBy: memberIDFromContext(c),
		Note:       req.Note,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendValidationError(c, "invalid tag assignment", validationIssues(err))
		case errors.Is(err, service.ErrTagAlreadyAssigned):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to assign tag")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to assign tag")
		}
	}

	return utils.SendCreated(c, "tag assigned", dto.NewTagResponse(result))
}

func (h *TagHandler) bulkAssign(c *fiber.Ctx) error {
	var req dto.BulkAssignTagRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.BulkAssign(c.Context(), service.BulkAssignTagInput{
		MemberIDs:  req.MemberIDs,
		TagName:    req.TagName,
		AssignedBy: memberIDFromContext(c),
		Note:       req.Note,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendValidationError(c, "invalid bulk assignment", validationIssues(err))
		case errors.Is(err, service.ErrBulkSystemTag):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to bulk assign tag")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to bulk assign tag")
		}
	}

	return utils.SendSuccess(c, "tags assigned", result)
}

func (h *TagHandler) remove(c *fiber.Ctx) error {
	memberID, err := parseUintParam(c, "memberId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid member id")
	}
	tagName := c.Params("tagName")

	err = h.service.Remove(c.Context(), memberID, tagName, memberIDFromContext(c), c.Query("reason"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTagNotFound), errors.Is(err, service.ErrMemberTagNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to remove tag")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to remove tag")
		}
	}

	return utils.SendSuccess(c, "tag removed", nil)
}
