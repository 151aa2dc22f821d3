package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/uniact/activity-api/internal/dto"
	"github.com/uniact/activity-api/internal/service"
	"github.com/uniact/activity-api/internal/utils"
)

// RegistrationHandler manages registration lifecycle endpoints.
type RegistrationHandler struct {
	service service.RegistrationService
	logger  zerolog.Logger
}

// NewRegistrationHandler constructs a registration handler.
func NewRegistrationHandler(service service.RegistrationService, logger zerolog.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		service: service,
		logger:  logger.With().Str("component", "registration_handler").Logger(),
	}
}

// Register wires registration routes.
func (h *RegistrationHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Delete("/:id", h.cancel)
	router.Patch("/:id/status", h.updateStatus)
}

func (h *RegistrationHandler) create(c *fiber.Ctx) error {
	var payload dto.RegistrationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Register(c.Context(), actorFromContext(c), payload)
	if err != nil {
		if status := statusForServiceError(err); status != 0 {
			return utils.SendError(c, status, err.Error())
		}
		h.logger.Error().Err(err).Uint("role_id", payload.RoleID).Msg("failed to create registration")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create registration")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "registration created", response)
}

func (h *RegistrationHandler) cancel(c *fiber.Ctx) error {
	registrationID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid registration id")
	}

	response, err := h.service.Cancel(c.Context(), actorFromContext(c), registrationID)
	if err != nil {
		if status := statusForServiceError(err); status != 0 {
			return utils.SendError(c, status, err.Error())
		}
		h.logger.Error().Err(err).Uint("registration_id", registrationID).Msg("failed to cancel registration")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to cancel registration")
	}

	return utils.SendSuccess(c, "registration cancelled", response)
}

func (h *RegistrationHandler) updateStatus(c *fiber.Ctx) error {
	registrationID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid registration id")
	}

	var payload dto.RegistrationStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.UpdateStatus(c.Context(), actorFromContext(c), registrationID, payload)
	if err != nil {
		if status := statusForServiceError(err); status != 0 {
			return utils.SendError(c, status, err.Error())
		}
		h.logger.Error().Err(err).Uint("registration_id", registrationID).Msg("failed to update registration status")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update registration")
	}

	return utils.SendSuccess(c, "registration status updated", response)
}
