package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/fellowship-hq/fellowship-api/internal/dto"
	"github.com/fellowship-hq/fellowship-api/internal/service"
	"github.com/fellowship-hq/fellowship-api/internal/utils"
)

// EditRequestHandler serves the profile edit workflow endpoints.
type EditRequestHandler struct {
	service service.EditRequestService
	logger  zerolog.Logger
}

// NewEditRequestHandler constructs the handler instance.
func NewEditRequestHandler(service service.EditRequestService, logger zerolog.Logger) *EditRequestHandler {
	return &EditRequestHandler{
		service: service,
		logger:  logger.With().Str("component", "edit_request_handler").Logger(),
	}
}

// Register wires the edit request routes onto the members group.
func (h *EditRequestHandler) Register(router fiber.Router) {
	router.Post("/me/edit-request", h.submit)
	router.Get("/edit-requests", h.list)
	router.Patch("/edit-requests/:id", h.review)
}

func (h *EditRequestHandler) submit(c *fiber.Ctx) error {
	memberID := memberIDFromContext(c)
	if memberID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var req dto.EditRequestSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Submit(c.Context(), memberID, req)
	if err != nil {
		var unknownField service.UnknownFieldError
		var invalidValue service.InvalidFieldValueError
		switch {
		case isValidationError(err):
			return utils.SendValidationError(c, "invalid edit request", validationIssues(err))
		case errors.As(err, &unknownField), errors.As(err, &invalidValue):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNoEffectiveChanges):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPendingRequestExists):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, service.ErrMemberNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to submit edit request")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit edit request")
		}
	}

	return utils.SendCreated(c, "edit request submitted", result)
}

func (h *EditRequestHandler) list(c *fiber.Ctx) error {
	reviewer := actorFromContext(c)

	result, err := h.service.List(c.Context(), reviewer, c.Query("status"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrListScopeForbidden):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to list edit requests")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to list edit requests")
		}
	}

	return utils.SendSuccess(c, "edit requests retrieved", result)
}

func (h *EditRequestHandler) review(c *fiber.Ctx) error {
	requestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request id")
	}

	var req dto.EditRequestReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Review(c.Context(), actorFromContext(c), requestID, req)
	if err != nil {
		var resolved service.AlreadyResolvedError
		var invalidValue service.InvalidFieldValueError
		switch {
		case isValidationError(err), errors.As(err, &invalidValue):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrRequestNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrReviewForbidden), errors.Is(err, service.ErrSelfReview):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		case errors.As(err, &resolved):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to review edit request")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to review edit request")
		}
	}

	return utils.SendSuccess(c, "edit request reviewed", result)
}
