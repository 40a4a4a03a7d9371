package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/lesson-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httpresp"
	ucAvailability "github.com/BruksfildServices01/lesson-scheduler/internal/usecase/availability"
)

type AvailabilityHandler struct {
	upsertRule      *ucAvailability.UpsertRule
	listRules       *ucAvailability.ListRules
	upsertException *ucAvailability.UpsertException
	deleteException *ucAvailability.DeleteException
}

func NewAvailabilityHandler(
	upsertRule *ucAvailability.UpsertRule,
	listRules *ucAvailability.ListRules,
	upsertException *ucAvailability.UpsertException,
	deleteException *ucAvailability.DeleteException,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		upsertRule:      upsertRule,
		listRules:       listRules,
		upsertException: upsertException,
		deleteException: deleteException,
	}
}

// Janela ausente (ou null) significa período fechado.
type RuleRequest struct {
	Morning     domain.MaybeWindow `json:"morning"`
	Afternoon   domain.MaybeWindow `json:"afternoon"`
	DurationMin int                `json:"slot_duration_min"`
	Active      *bool              `json:"active"`
}

type ExceptionRequest struct {
	Morning     domain.MaybeWindow `json:"morning"`
	Afternoon   domain.MaybeWindow `json:"afternoon"`
	DurationMin int                `json:"slot_duration_min"`
}

// ======================================================
// RULES
// ======================================================

func (h *AvailabilityHandler) ListRules(c *gin.Context) {
	actor := actorFrom(c)

	rules, err := h.listRules.Execute(c.Request.Context(), actor.TrainerID)
	if err != nil {
		httperr.FromError(c, err, "failed_to_list_rules")
		return
	}

	httpresp.List(c, rules)
}

func (h *AvailabilityHandler) UpsertRule(c *gin.Context) {
	actor := actorFrom(c)

	weekday, err := strconv.Atoi(c.Param("weekday"))
	if err != nil {
		httperr.BadRequest(c, "invalid_weekday", httperr.Message("invalid_weekday"))
		return
	}

	var req RuleRequest
	if !bindJSON(c, &req) {
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	rule, err := h.upsertRule.Execute(c.Request.Context(), ucAvailability.UpsertRuleInput{
		ClubID:      actor.ClubID,
		TrainerID:   actor.TrainerID,
		Weekday:     weekday,
		Morning:     req.Morning,
		Afternoon:   req.Afternoon,
		DurationMin: req.DurationMin,
		Active:      active,
	})
	if err != nil {
		httperr.FromError(c, err, "failed_to_save_rule")
		return
	}

	httpresp.OK(c, rule)
}

// ======================================================
// EXCEPTIONS
// ======================================================

func (h *AvailabilityHandler) UpsertException(c *gin.Context) {
	actor := actorFrom(c)

	var req ExceptionRequest
	if !bindJSON(c, &req) {
		return
	}

	ex, err := h.upsertException.Execute(c.Request.Context(), ucAvailability.UpsertExceptionInput{
		ClubID:      actor.ClubID,
		TrainerID:   actor.TrainerID,
		Date:        c.Param("date"),
		Morning:     req.Morning,
		Afternoon:   req.Afternoon,
		DurationMin: req.DurationMin,
	})
	if err != nil {
		httperr.FromError(c, err, "failed_to_save_exception")
		return
	}

	httpresp.OK(c, ex)
}

func (h *AvailabilityHandler) DeleteException(c *gin.Context) {
	actor := actorFrom(c)

	err := h.deleteException.Execute(c.Request.Context(), actor.ClubID, actor.TrainerID, c.Param("date"))
	if err != nil {
		httperr.FromError(c, err, "failed_to_delete_exception")
		return
	}

	c.Status(http.StatusNoContent)
}
