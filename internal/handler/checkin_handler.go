package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/fellowship-hq/fellowship-api/internal/dto"
	"github.com/fellowship-hq/fellowship-api/internal/service"
	"github.com/fellowship-hq/fellowship-api/internal/utils"
)

// CheckinHandler serves the attendance check-in endpoints.
type CheckinHandler struct {
	service service.CheckinService
	logger  zerolog.Logger
}

// NewCheckinHandler constructs the handler instance.
func NewCheckinHandler(service service.CheckinService, logger zerolog.Logger) *CheckinHandler {
	return &CheckinHandler{
		service: service,
		logger:  logger.With().Str("component", "checkin_handler").Logger(),
	}
}

// Register wires the check-in routes.
func (h *CheckinHandler) Register(router fiber.Router) {
	router.Post("/", h.checkIn)
	router.Post("/guest", h.guestCheckIn)
	router.Get("/events/:eventId/stats", h.eventStats)
}

func (h *CheckinHandler) checkIn(c *fiber.Ctx) error {
	var req dto.CheckinRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.CheckIn(c.Context(), req)
	if err != nil {
		return h.mapCheckinError(c, err)
	}

	return utils.SendCreated(c, "check-in recorded", result)
}

func (h *CheckinHandler) guestCheckIn(c *fiber.Ctx) error {
	var req dto.GuestCheckinRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.GuestCheckIn(c.Context(), req)
	if err != nil {
		return h.mapCheckinError(c, err)
	}

	return utils.SendCreated(c, "guest check-in recorded", result)
}

func (h *CheckinHandler) eventStats(c *fiber.Ctx) error {
	eventID, err := parseUintParam(c, "eventId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	result, err := h.service.EventStats(c.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load event stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load event stats")
	}

	return utils.SendSuccess(c, "event stats retrieved", result)
}

func (h *CheckinHandler) mapCheckinError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err), errors.Is(err, service.ErrInvalidMemberLookup):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrMemberNotFound), errors.Is(err, service.ErrEventNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEventInactive),
		errors.Is(err, service.ErrOutsideEventWindow),
		errors.Is(err, service.ErrGuestCheckinDisabled):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("check-in failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to record check-in")
	}
}
