package booking

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/lesson-scheduler/internal/audit"
	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/availability"
	domain "github.com/BruksfildServices01/lesson-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
	"github.com/BruksfildServices01/lesson-scheduler/internal/notify"
	"github.com/BruksfildServices01/lesson-scheduler/internal/payment"
	"github.com/BruksfildServices01/lesson-scheduler/internal/timezone"
	"github.com/BruksfildServices01/lesson-scheduler/internal/validators"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	ClubID    uint
	TrainerID uint

	Date         string // YYYY-MM-DD
	Start        string // HH:MM
	DurationMin  int
	Participants int

	PlayerName  string
	PlayerEmail string
	PlayerPhone string

	PaymentMethod string

	// held-remote
	CardToken       string
	PaymentMethodID string
}

// SlotSource calcula a grade atual de um treinador.
type SlotSource interface {
	Load(
		ctx context.Context,
		clubID uint,
		trainerID uint,
		from time.Time,
		to time.Time,
	) ([]slot.ComputedSlot, error)
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	deps  Deps
	slots SlotSource
}

func NewCreateBooking(deps Deps, slots SlotSource) *CreateBooking {
	return &CreateBooking{deps: deps.normalized(), slots: slots}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	d := uc.deps

	// --------------------------------------------------
	// 1️⃣ Clube / treinador
	// --------------------------------------------------
	club, err := d.Repo.GetClubByID(ctx, in.ClubID)
	if err != nil {
		return nil, err
	}
	trainer, err := d.Repo.GetTrainer(ctx, in.ClubID, in.TrainerID)
	if err != nil {
		return nil, err
	}
	if !trainer.Active {
		return nil, domain.ErrTrainerNotFound
	}

	// --------------------------------------------------
	// 2️⃣ Entrada
	// --------------------------------------------------
	date, err := timezone.ParseDate(in.Date)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_date")
	}
	start, err := availability.ParseTimeOfDay(in.Start)
	if err != nil {
		return nil, err
	}
	if !availability.ValidDuration(in.DurationMin) {
		return nil, httperr.ErrValidation("invalid_duration")
	}

	participants := in.Participants
	if participants == 0 {
		participants = 1
	}
	maxParticipants := trainer.MaxParticipants
	if maxParticipants <= 0 {
		maxParticipants = d.Settings.DefaultMaxParticipants
	}
	if participants < 1 || participants > maxParticipants {
		return nil, httperr.ErrValidation("invalid_participants")
	}

	if err := validatePlayer(in); err != nil {
		return nil, err
	}

	method := domain.PaymentMethod(in.PaymentMethod)
	if method == "" {
		method = domain.PaymentInPerson
	}
	if !method.Valid() {
		return nil, httperr.ErrValidation("invalid_payment_method")
	}
	if method == domain.PaymentHeldRemote && (in.CardToken == "" || d.Payments == nil) {
		return nil, httperr.ErrValidation("missing_card_token")
	}

	// --------------------------------------------------
	// 3️⃣ Antecedência mínima
	// --------------------------------------------------
	now := d.Clock.Now()
	startsAt := timezone.At(date, int(start), club.Timezone)
	minAllowed := now.Add(time.Duration(club.MinAdvanceMinutes) * time.Minute)
	if startsAt.Before(minAllowed) {
		return nil, httperr.ErrValidation("too_soon")
	}

	// --------------------------------------------------
	// 4️⃣ O slot precisa estar livre na grade atual
	// --------------------------------------------------
	grid, err := uc.slots.Load(ctx, in.ClubID, in.TrainerID, date, date)
	if err != nil {
		return nil, err
	}
	s, ok := slot.Find(grid, timezone.FormatDate(date), start, in.DurationMin)
	if !ok || s.Status != slot.StatusFree {
		return nil, domain.ErrSlotUnavailable
	}

	// --------------------------------------------------
	// 5️⃣ Monta a reserva
	// --------------------------------------------------
	currency := club.Currency
	if currency == "" {
		currency = d.Settings.DefaultCurrency
	}

	deadline := now.Add(domain.ResponseWindow(trainer, club, d.Settings.DefaultResponseWindow))

	b := &models.Booking{
		ClubID:        in.ClubID,
		TrainerID:     in.TrainerID,
		LessonDate:    date,
		StartMin:      int(s.Start),
		EndMin:        int(s.End),
		DurationMin:   in.DurationMin,
		Participants:  participants,
		TotalPrice:    domain.QuotePrice(trainer, in.DurationMin, participants),
		Currency:      currency,
		PlayerName:    strings.TrimSpace(in.PlayerName),
		PlayerEmail:   strings.TrimSpace(in.PlayerEmail),
		PlayerPhone:   strings.TrimSpace(in.PlayerPhone),
		PaymentMethod: string(method),
		Status:        string(domain.InitialStatus()),
		AutoCancelAt:  &deadline,
		HoldStatus:    string(domain.HoldNone),
		CancelToken:   uuid.NewString(),
	}

	if method == domain.PaymentHeldRemote {
		session := uuid.NewString()
		b.PaymentSessionID = &session
		b.HoldStatus = string(domain.HoldAuthorizing)
	}

	// --------------------------------------------------
	// 6️⃣ Compare-and-insert
	// --------------------------------------------------
	if err := d.Repo.CreateBooking(ctx, b); err != nil {
		if httperr.IsConflict(err) {
			return nil, err
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	trainerID := trainer.ID
	d.Audit.Dispatch(audit.Event{
		ClubID:    b.ClubID,
		TrainerID: &trainerID,
		Action:    "booking_created",
		Entity:    "booking",
		EntityID:  audit.Uint(b.ID),
		Metadata: map[string]any{
			"date":           in.Date,
			"start":          in.Start,
			"duration_min":   in.DurationMin,
			"payment_method": b.PaymentMethod,
		},
	})
	d.Notify.Send(notify.FromBooking(notify.BookingRequested, b, now))

	// --------------------------------------------------
	// 7️⃣ Hold de pagamento
	// --------------------------------------------------
	if method == domain.PaymentHeldRemote {
		_, err := d.Payments.Authorize(ctx, b, payment.AuthorizeRequest{
			SessionID:       *b.PaymentSessionID,
			Amount:          b.TotalPrice,
			Currency:        b.Currency,
			PlatformFee:     platformFee(b.TotalPrice, club.PlatformFeePercent),
			Destination:     trainer.PaymentDestination,
			Description:     fmt.Sprintf("Aula com %s em %s %s", trainer.Name, in.Date, s.Start),
			PayerEmail:      b.PlayerEmail,
			CardToken:       in.CardToken,
			PaymentMethodID: in.PaymentMethodID,
		})
		if err != nil {
			d.Logger.Info("booking payment not authorized",
				zap.Uint("booking_id", b.ID),
				zap.Error(err),
			)
			return b, err
		}
	}

	return b, nil
}

func validatePlayer(in CreateBookingInput) error {
	if strings.TrimSpace(in.PlayerName) == "" {
		return httperr.ErrValidation("missing_player_name")
	}
	if in.PlayerEmail != "" && !validators.IsEmail(in.PlayerEmail) {
		return httperr.ErrValidation("invalid_email")
	}
	if in.PlayerPhone != "" && !validators.IsPhone(in.PlayerPhone) {
		return httperr.ErrValidation("invalid_phone")
	}
	if in.PlayerEmail == "" && in.PlayerPhone == "" {
		return httperr.ErrValidation("missing_player_contact")
	}
	return nil
}

func platformFee(total, percent float64) float64 {
	if percent <= 0 {
		return 0
	}
	return math.Round(total*percent) / 100
}
