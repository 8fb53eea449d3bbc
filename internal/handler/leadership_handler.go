package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/fellowship-hq/fellowship-api/internal/dto"
	"github.com/fellowship-hq/fellowship-api/internal/service"
	"github.com/fellowship-hq/fellowship-api/internal/utils"
)

// LeadershipHandler serves regional leadership and org-structure endpoints.
type LeadershipHandler struct {
	service service.LeadershipService
	logger  zerolog.Logger
}

// NewLeadershipHandler constructs the handler instance.
func NewLeadershipHandler(service service.LeadershipService, logger zerolog.Logger) *LeadershipHandler {
	return &LeadershipHandler{
		service: service,
		logger:  logger.With().Str("component", "leadership_handler").Logger(),
	}
}

// Register wires the structure route available to managers and regional heads.
func (h *LeadershipHandler) Register(router fiber.Router) {
	router.Get("/structure", h.structure)
}

// RegisterManaged wires the assignment routes restricted to fellowship managers.
func (h *LeadershipHandler) RegisterManaged(router fiber.Router) {
	router.Post("/regional-heads/assign", h.assign)
	router.Delete("/regional-heads/:regionId/remove", h.remove)
}

func (h *LeadershipHandler) assign(c *fiber.Ctx) error {
	var req dto.AssignRegionalHeadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.AssignRegionalHead(c.Context(), req, actorFromContext(c))
	if err != nil {
		var alreadyHeads service.AlreadyHeadsRegionError
		switch {
		case isValidationError(err),
			errors.Is(err, service.ErrMemberDeleted),
			errors.As(err, &alreadyHeads):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrRegionNotFound), errors.Is(err, service.ErrMemberNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrRegionHeadOccupied):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to assign regional head")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to assign regional head")
		}
	}

	return utils.SendSuccess(c, "regional head assigned", result)
}

func (h *LeadershipHandler) remove(c *fiber.Ctx) error {
	regionID, err := parseUintParam(c, "regionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid region id")
	}

	result, err := h.service.RemoveRegionalHead(c.Context(), regionID, actorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegionNotFound), errors.Is(err, service.ErrNoRegionalHead):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to remove regional head")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to remove regional head")
		}
	}

	return utils.SendSuccess(c, "regional head removed", result)
}

func (h *LeadershipHandler) structure(c *fiber.Ctx) error {
	result, err := h.service.Structure(c.Context(), actorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStructureForbidden):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to build structure")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to build structure")
		}
	}

	if result.CacheHit {
		c.Set("X-Cache-Hit", "true")
	} else {
		c.Set("X-Cache-Hit", "false")
	}

	return utils.SendSuccess(c, "structure retrieved", result)
}
