package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/lesson-scheduler/internal/dto"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httpresp"
	ucBooking "github.com/BruksfildServices01/lesson-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	create *ucBooking.CreateBooking
	decide *ucBooking.DecideBooking
	cancel *ucBooking.CancelBooking
	list   *ucBooking.ListBookings
}

func NewBookingHandler(
	create *ucBooking.CreateBooking,
	decide *ucBooking.DecideBooking,
	cancel *ucBooking.CancelBooking,
	list *ucBooking.ListBookings,
) *BookingHandler {
	return &BookingHandler{
		create: create,
		decide: decide,
		cancel: cancel,
		list:   list,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	Date         string `json:"date"`  // YYYY-MM-DD
	Start        string `json:"start"` // HH:MM
	DurationMin  int    `json:"duration_min"`
	Participants int    `json:"participants"`

	PlayerName  string `json:"player_name"`
	PlayerEmail string `json:"player_email"`
	PlayerPhone string `json:"player_phone"`

	PaymentMethod   string `json:"payment_method"`
	CardToken       string `json:"card_token"`
	PaymentMethodID string `json:"payment_method_id"`
}

type DecisionRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type PublicCancelRequest struct {
	Token string `json:"token" binding:"required"`
}

// ======================================================
// PUBLIC
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	clubID, ok := paramID(c, "club_id")
	if !ok {
		return
	}
	trainerID, ok := paramID(c, "trainer_id")
	if !ok {
		return
	}

	var req CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.create.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		ClubID:          clubID,
		TrainerID:       trainerID,
		Date:            req.Date,
		Start:           req.Start,
		DurationMin:     req.DurationMin,
		Participants:    req.Participants,
		PlayerName:      req.PlayerName,
		PlayerEmail:     req.PlayerEmail,
		PlayerPhone:     req.PlayerPhone,
		PaymentMethod:   req.PaymentMethod,
		CardToken:       req.CardToken,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		bookingError(c, b, err, "failed_to_create_booking")
		return
	}

	httpresp.Created(c, dto.CreatedBookingDTO{
		BookingDTO:  dto.FromBooking(b),
		CancelToken: b.CancelToken,
	})
}

func (h *BookingHandler) CancelByToken(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req PublicCancelRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.cancel.ByToken(c.Request.Context(), id, req.Token)
	if err != nil {
		bookingError(c, b, err, "failed_to_cancel_booking")
		return
	}

	httpresp.OK(c, dto.FromBooking(b))
}

// ======================================================
// TRAINER
// ======================================================

func (h *BookingHandler) Decide(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req DecisionRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.decide.Execute(c.Request.Context(), ucBooking.DecideBookingInput{
		Actor:     actorFrom(c),
		BookingID: id,
		Action:    req.Action,
		Reason:    req.Reason,
	})
	if err != nil {
		bookingError(c, b, err, "failed_to_decide_booking")
		return
	}

	httpresp.OK(c, dto.FromBooking(b))
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// corpo opcional
	var req CancelRequest
	_ = c.ShouldBindJSON(&req)

	b, err := h.cancel.ByActor(c.Request.Context(), actorFrom(c), id, req.Reason)
	if err != nil {
		bookingError(c, b, err, "failed_to_cancel_booking")
		return
	}

	httpresp.OK(c, dto.FromBooking(b))
}

func (h *BookingHandler) List(c *gin.Context) {
	list, err := h.list.Execute(c.Request.Context(), ucBooking.ListBookingsInput{
		Actor:  actorFrom(c),
		Status: c.Query("status"),
		From:   c.Query("from"),
		To:     c.Query("to"),
	})
	if err != nil {
		httperr.FromError(c, err, "failed_to_list_bookings")
		return
	}

	httpresp.List(c, dto.FromBookings(list))
}
