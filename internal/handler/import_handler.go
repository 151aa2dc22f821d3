package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/uniact/activity-api/internal/dto"
	"github.com/uniact/activity-api/internal/service"
	"github.com/uniact/activity-api/internal/utils"
)

// ImportHandler accepts bulk attendance sheets for reconciliation.
type ImportHandler struct {
	service service.ImportService
	logger  zerolog.Logger
}

// NewImportHandler constructs an import handler.
func NewImportHandler(service service.ImportService, logger zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		service: service,
		logger:  logger.With().Str("component", "import_handler").Logger(),
	}
}

// Register wires import routes.
func (h *ImportHandler) Register(router fiber.Router) {
	router.Post("/:id/attendance/import", h.reconcile)
}

func (h *ImportHandler) reconcile(c *fiber.Ctx) error {
	activityID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	var payload dto.AttendanceImportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	outcome, err := h.service.Reconcile(c.Context(), actorFromContext(c), activityID, payload)
	if err != nil {
		if status := statusForServiceError(err); status != 0 {
			return utils.SendError(c, status, err.Error())
		}
		h.logger.Error().Err(err).Uint("activity_id", activityID).Msg("attendance import failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to import attendance")
	}

	// Row-level failures are part of the outcome, not a request failure.
	return utils.SendSuccess(c, "attendance import processed", outcome)
}
