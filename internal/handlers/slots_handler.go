package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httpresp"
	ucAvailability "github.com/BruksfildServices01/lesson-scheduler/internal/usecase/availability"
)

type SlotsHandler struct {
	getSlots *ucAvailability.GetSlots
}

func NewSlotsHandler(getSlots *ucAvailability.GetSlots) *SlotsHandler {
	return &SlotsHandler{getSlots: getSlots}
}

// List devolve a grade do treinador (free/booked/blocked) entre from e to.
func (h *SlotsHandler) List(c *gin.Context) {
	clubID, ok := paramID(c, "club_id")
	if !ok {
		return
	}
	trainerID, ok := paramID(c, "trainer_id")
	if !ok {
		return
	}

	slots, err := h.getSlots.Execute(c.Request.Context(), ucAvailability.GetSlotsInput{
		ClubID:    clubID,
		TrainerID: trainerID,
		From:      c.Query("from"),
		To:        c.Query("to"),
	})
	if err != nil {
		httperr.FromError(c, err, "failed_to_load_slots")
		return
	}

	httpresp.List(c, slots)
}
