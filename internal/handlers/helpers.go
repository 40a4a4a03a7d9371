package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/lesson-scheduler/internal/dto"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
	"github.com/BruksfildServices01/lesson-scheduler/internal/middleware"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
	ucBooking "github.com/BruksfildServices01/lesson-scheduler/internal/usecase/booking"
)

func actorFrom(c *gin.Context) ucBooking.Actor {
	return ucBooking.Actor{
		TrainerID: c.MustGet(middleware.ContextTrainerID).(uint),
		ClubID:    c.MustGet(middleware.ContextClubID).(uint),
		Role:      c.GetString(middleware.ContextUserRole),
	}
}

// paramID lê um ID positivo da rota; escreve 400 quando inválido.
func paramID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		httperr.BadRequest(c, "invalid_id", httperr.Message("invalid_id"))
		return 0, false
	}
	return uint(v), true
}

// bookingError responde o erro e, quando houver, a reserva no estado atual.
func bookingError(c *gin.Context, b *models.Booking, err error, internalCode string) {
	if b != nil && httperr.CodeOf(err) != "" {
		httperr.WriteWith(c, err, gin.H{"booking": dto.FromBooking(b)})
		return
	}
	httperr.FromError(c, err, internalCode)
}

// bindJSON devolve false após responder 400. Erros de negócio vindos do
// próprio JSON (ex.: janela inválida) mantêm o código.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if httperr.CodeOf(err) != "" {
			httperr.FromError(c, err, "invalid_request")
			return false
		}
		httperr.BadRequest(c, "invalid_request", httperr.Message("invalid_request"))
		return false
	}
	return true
}
