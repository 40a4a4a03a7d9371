// Package booking implementa a máquina de estados das reservas:
// criação, decisão do treinador, cancelamento e expiração.
package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/lesson-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/lesson-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
	"github.com/BruksfildServices01/lesson-scheduler/internal/notify"
	"github.com/BruksfildServices01/lesson-scheduler/internal/payment"
	"github.com/BruksfildServices01/lesson-scheduler/internal/timezone"
)

const RoleAdmin = "admin"

// Actor é o usuário autenticado (treinador ou admin do clube).
type Actor struct {
	TrainerID uint
	ClubID    uint
	Role      string
}

func (a Actor) CanActOn(b *models.Booking) bool {
	if b.ClubID != a.ClubID {
		return false
	}
	return a.Role == RoleAdmin || b.TrainerID == a.TrainerID
}

// Payments é o lado de pagamento usado pelas transições.
type Payments interface {
	Authorize(ctx context.Context, b *models.Booking, req payment.AuthorizeRequest) (payment.Outcome, error)
	Capture(ctx context.Context, b *models.Booking) (payment.Outcome, error)
	Release(ctx context.Context, b *models.Booking) (payment.Outcome, error)
}

type Settings struct {
	DefaultResponseWindow  time.Duration
	DefaultCurrency        string
	DefaultMaxParticipants int
	SweepBatch             int
}

func (s Settings) withDefaults() Settings {
	if s.DefaultResponseWindow <= 0 {
		s.DefaultResponseWindow = 24 * time.Hour
	}
	if s.DefaultCurrency == "" {
		s.DefaultCurrency = "BRL"
	}
	if s.DefaultMaxParticipants <= 0 {
		s.DefaultMaxParticipants = 4
	}
	if s.SweepBatch <= 0 {
		s.SweepBatch = 100
	}
	return s
}

// Deps agrupa as dependências comuns aos casos de uso.
type Deps struct {
	Repo     domain.Repository
	Payments Payments
	Audit    *audit.Dispatcher
	Notify   *notify.Dispatcher
	Clock    timezone.Clock
	Logger   *zap.Logger
	Settings Settings
}

func (d Deps) normalized() Deps {
	if d.Clock == nil {
		d.Clock = timezone.SystemClock{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	d.Settings = d.Settings.withDefaults()
	return d
}

// ======================================================
// SHARED TRANSITION EFFECTS
// ======================================================

var notifyKinds = map[domain.Status]notify.Kind{
	domain.StatusConfirmed: notify.BookingConfirmed,
	domain.StatusRejected:  notify.BookingRejected,
	domain.StatusExpired:   notify.BookingExpired,
	domain.StatusCancelled: notify.BookingCancelled,
}

// afterTransition registra, notifica e conduz o hold. Falhas de pagamento
// ficam no hold/auditoria e não desfazem a transição.
func (d Deps) afterTransition(ctx context.Context, b *models.Booking, actor *uint) {
	status := domain.StatusOf(b)

	d.Audit.Dispatch(audit.Event{
		ClubID:    b.ClubID,
		TrainerID: actor,
		Action:    "booking_" + string(status),
		Entity:    "booking",
		EntityID:  audit.Uint(b.ID),
		Metadata:  map[string]string{"reason": b.Reason},
	})

	if domain.MethodOf(b) == domain.PaymentHeldRemote && d.Payments != nil {
		var (
			outcome payment.Outcome
			err     error
		)
		if status == domain.StatusConfirmed {
			outcome, err = d.Payments.Capture(ctx, b)
		} else {
			outcome, err = d.Payments.Release(ctx, b)
		}
		if err != nil {
			d.Logger.Warn("payment step failed",
				zap.Uint("booking_id", b.ID),
				zap.String("status", b.Status),
				zap.String("outcome", string(outcome)),
				zap.Error(err),
			)
		}
	}

	if kind, ok := notifyKinds[status]; ok {
		d.Notify.Send(notify.FromBooking(kind, b, d.Clock.Now()))
	}
}

// expireNow expira uma reserva pending vencida que ainda não passou pela varredura.
func (d Deps) expireNow(ctx context.Context, id uint, now time.Time) (*models.Booking, bool, error) {
	b, ok, err := d.Repo.TransitionStatus(ctx, id, domain.Transition{
		To:     domain.StatusExpired,
		At:     now,
		Reason: domain.ReasonTimeout,
	})
	if err != nil {
		return nil, false, err
	}
	if ok {
		d.afterTransition(ctx, b, nil)
	}
	return b, ok, nil
}

// lost explica por que uma escrita condicionada não aconteceu.
func (d Deps) lost(ctx context.Context, current *models.Booking, now time.Time) (*models.Booking, error) {
	if domain.Expired(current, now) {
		expired, ok, err := d.expireNow(ctx, current.ID, now)
		if err != nil {
			return nil, err
		}
		if ok {
			return expired, domain.ErrBookingExpired
		}
		current = expired
	}
	if domain.StatusOf(current) == domain.StatusExpired {
		return current, domain.ErrBookingExpired
	}
	return current, domain.ErrAlreadyFinal
}
