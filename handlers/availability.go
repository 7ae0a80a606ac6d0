package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/hazqeelknight/events/models"
	"github.com/hazqeelknight/events/services/availability"
	"github.com/hazqeelknight/events/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AvailabilityHandler exposes the engine's boundary operations over HTTP.
// It only binds parameters and maps errors; all computation lives in the
// availability service.
type AvailabilityHandler struct {
	Engine availability.AvailabilityEngine
}

// NewAvailabilityHandler constructs the handler bundle for availability routes.
func NewAvailabilityHandler(engine availability.AvailabilityEngine) *AvailabilityHandler {
	return &AvailabilityHandler{Engine: engine}
}

// CalculatedSlotsHandler serves GET /api/availability/:organizerID/calculated-slots.
func (h *AvailabilityHandler) CalculatedSlotsHandler(c *gin.Context) {
	query := models.SlotQuery{
		OrganizerID:   c.Param("organizerID"),
		EventTypeSlug: c.Query("event_type_slug"),
		StartDate:     c.Query("start_date"),
		EndDate:       c.Query("end_date"),
	}

	duration, err := strconv.Atoi(c.DefaultQuery("duration_minutes", "30"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid duration_minutes", c.Query("duration_minutes"))
		return
	}
	query.DurationMinutes = duration

	if raw := c.Query("attendee_count"); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid attendee_count", raw)
			return
		}
		query.AttendeeCount = count
	}
	if raw := c.Query("max_attendees"); raw != "" {
		ceiling, err := strconv.Atoi(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid max_attendees", raw)
			return
		}
		query.MaxAttendees = &ceiling
	}

	// Either a single invitee_timezone or a comma-separated invitee_timezones
	// list; the engine normalizes ordering when fingerprinting.
	if tz := c.Query("invitee_timezone"); tz != "" {
		query.InviteeTimezones = []string{tz}
	}
	if raw := c.Query("invitee_timezones"); raw != "" {
		for _, tz := range strings.Split(raw, ",") {
			if tz = strings.TrimSpace(tz); tz != "" {
				query.InviteeTimezones = append(query.InviteeTimezones, tz)
			}
		}
	}

	response, err := h.Engine.CalculateSlots(c.Request.Context(), query)
	if err != nil {
		var validationErr *availability.ValidationError
		var rangeErr *availability.RangeTooLargeError
		switch {
		case errors.As(err, &validationErr):
			utils.JSONError(c, http.StatusBadRequest, "invalid request", validationErr.Message)
		case errors.As(err, &rangeErr):
			utils.JSONError(c, http.StatusBadRequest, "date range too large", rangeErr.Error())
		default:
			utils.GetLogger().Error("failed to calculate slots",
				zap.String("organizerID", query.OrganizerID), zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "failed to calculate availability", "")
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

// InvalidateCacheHandler serves POST /api/availability/:organizerID/cache/invalidate.
// The management layer calls it on any write to rules, overrides, blocks or
// buffer settings.
func (h *AvailabilityHandler) InvalidateCacheHandler(c *gin.Context) {
	organizerID := c.Param("organizerID")
	if organizerID == "" {
		utils.JSONError(c, http.StatusBadRequest, "organizerID is required", "")
		return
	}
	if err := h.Engine.Invalidate(c.Request.Context(), organizerID); err != nil {
		utils.GetLogger().Error("failed to invalidate availability cache",
			zap.String("organizerID", organizerID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to invalidate cache", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidated": organizerID})
}

// EngineStatsHandler serves GET /api/availability/stats.
func (h *AvailabilityHandler) EngineStatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.Engine.Stats())
}
