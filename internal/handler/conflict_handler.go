package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/uniact/activity-api/internal/dto"
	"github.com/uniact/activity-api/internal/service"
	"github.com/uniact/activity-api/internal/utils"
)

// ConflictHandler answers schedule collision queries.
type ConflictHandler struct {
	service service.ConflictService
	logger  zerolog.Logger
}

// NewConflictHandler constructs a conflict handler.
func NewConflictHandler(service service.ConflictService, logger zerolog.Logger) *ConflictHandler {
	return &ConflictHandler{
		service: service,
		logger:  logger.With().Str("component", "conflict_handler").Logger(),
	}
}

// Register wires conflict routes.
func (h *ConflictHandler) Register(router fiber.Router) {
	router.Post("/check", h.check)
}

func (h *ConflictHandler) check(c *fiber.Ctx) error {
	var payload dto.ConflictCheckRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	report, err := h.service.Check(c.Context(), payload)
	if err != nil {
		if status := statusForServiceError(err); status != 0 {
			return utils.SendError(c, status, err.Error())
		}
		h.logger.Error().Err(err).Uint("student_id", payload.StudentID).Msg("conflict check failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to check conflicts")
	}

	return utils.SendSuccess(c, "conflict check completed", report)
}
