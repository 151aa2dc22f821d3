package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/uniact/activity-api/internal/service"
	"github.com/uniact/activity-api/internal/utils"
)

// PointHandler serves point summaries for students and classes.
type PointHandler struct {
	service service.PointService
	logger  zerolog.Logger
}

// NewPointHandler constructs a point handler.
func NewPointHandler(service service.PointService, logger zerolog.Logger) *PointHandler {
	return &PointHandler{
		service: service,
		logger:  logger.With().Str("component", "point_handler").Logger(),
	}
}

// Register wires point routes.
func (h *PointHandler) Register(router fiber.Router) {
	router.Get("/students/:id", h.studentSummary)
	router.Get("/classes/:id", h.classSummary)
}

func (h *PointHandler) studentSummary(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	semesterID, err := parseQueryUint(c, "semester_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid semester id")
	}

	summary, err := h.service.ComputeStudent(c.Context(), studentID, semesterID)
	if err != nil {
		if status := statusForServiceError(err); status != 0 {
			return utils.SendError(c, status, err.Error())
		}
		h.logger.Error().Err(err).Uint("student_id", studentID).Msg("failed to compute student points")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute points")
	}

	return utils.SendSuccess(c, "student points computed", summary)
}

func (h *PointHandler) classSummary(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	semesterID, err := parseQueryUint(c, "semester_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid semester id")
	}

	summary, err := h.service.ComputeClass(c.Context(), classID, semesterID)
	if err != nil {
		if status := statusForServiceError(err); status != 0 {
			return utils.SendError(c, status, err.Error())
		}
		h.logger.Error().Err(err).Uint("class_id", classID).Msg("failed to compute class points")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute points")
	}

	return utils.SendSuccess(c, "class points computed", summary)
}
