package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/uniact/activity-api/internal/dto"
	"github.com/uniact/activity-api/internal/service"
	"github.com/uniact/activity-api/internal/utils"
)

// ActivityHandler manages activity and role endpoints.
type ActivityHandler struct {
	activities    service.ActivityService
	registrations service.RegistrationService
	logger        zerolog.Logger
}

// NewActivityHandler constructs an activity handler.
func NewActivityHandler(activities service.ActivityService, registrations service.RegistrationService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activities:    activities,
		registrations: registrations,
		logger:        logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register wires activity routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Post("/:id/roles", h.addRole)
	router.Patch("/roles/:roleId/slots", h.updateRoleSlots)
	router.Delete("/roles/:roleId", h.deleteRole)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	semesterID, err := parseQueryUint(c, "semester_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid semester id")
	}

	activities, err := h.activities.List(c.Context(), semesterID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list activities")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activities")
	}

	return utils.SendSuccess(c, "activities listed", activities)
}

func (h *ActivityHandler) get(c *fiber.Ctx) error {
	activityID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	activity, err := h.activities.Get(c.Context(), activityID)
	if err != nil {
		if status := statusForServiceError(err); status != 0 {
			return utils.SendError(c, status, err.Error())
		}
		h.logger.Error().Err(err).Uint("activity_id", activityID).Msg("failed to load activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load activity")
	}

	return utils.SendSuccess(c, "activity loaded", activity)
}

func (h *ActivityHandler) create(c *fiber.Ctx) error {
	var payload dto.ActivityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	activity, err := h.activities.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		if status := statusForServiceError(err); status != 0 {
			return utils.SendError(c, status, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to create activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create activity")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity created", activity)
}

func (h *ActivityHandler) addRole(c *fiber.Ctx) error {
	activityID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	var payload dto.RoleCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	role, err := h.activities.AddRole(c.Context(), actorFromContext(c), activityID, payload)
	if err != nil {
		if status := statusForServiceError(err); status != 0 {
			return utils.SendError(c, status, err.Error())
		}
		h.logger.Error().Err(err).Uint("activity_id", activityID).Msg("failed to add role")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to add role")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "role created", role)
}

func (h *ActivityHandler) updateRoleSlots(c *fiber.Ctx) error {
	roleID, err := parseUintParam(c, "roleId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid role id")
	}

	var payload dto.RoleSlotsUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	role, err := h.registrations.UpdateRoleSlots(c.Context(), actorFromContext(c), roleID, payload)
	if err != nil {
		if status := statusForServiceError(err); status != 0 {
			return utils.SendError(c, status, err.Error())
		}
		h.logger.Error().Err(err).Uint("role_id", roleID).Msg("failed to update role slots")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update role slots")
	}

	return utils.SendSuccess(c, "role slots updated", role)
}

func (h *ActivityHandler) deleteRole(c *fiber.Ctx) error {
	roleID, err := parseUintParam(c, "roleId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid role id")
	}

	if err := h.registrations.DeleteRole(c.Context(), actorFromContext(c), roleID); err != nil {
		if status := statusForServiceError(err); status != 0 {
			return utils.SendError(c, status, err.Error())
		}
		h.logger.Error().Err(err).Uint("role_id", roleID).Msg("failed to delete role")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete role")
	}

	return utils.SendSuccess(c, "role deleted", nil)
}
