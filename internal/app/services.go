package app

import (
	"go.uber.org/zap"

	"github.com/BruksfildServices01/lesson-scheduler/internal/audit"
	"github.com/BruksfildServices01/lesson-scheduler/internal/config"
	"github.com/BruksfildServices01/lesson-scheduler/internal/notify"
	"github.com/BruksfildServices01/lesson-scheduler/internal/payment"
	"github.com/BruksfildServices01/lesson-scheduler/internal/timezone"
	ucAvailability "github.com/BruksfildServices01/lesson-scheduler/internal/usecase/availability"
	ucBooking "github.com/BruksfildServices01/lesson-scheduler/internal/usecase/booking"
	"github.com/BruksfildServices01/lesson-scheduler/internal/usecase/reconcile"
)

// Services são os casos de uso prontos para os handlers e os comandos.
type Services struct {
	Audit  *audit.Dispatcher
	Notify *notify.Dispatcher

	// nil sem gateway configurado
	Payments *payment.Orchestrator

	GetSlots        *ucAvailability.GetSlots
	UpsertRule      *ucAvailability.UpsertRule
	ListRules       *ucAvailability.ListRules
	UpsertException *ucAvailability.UpsertException
	DeleteException *ucAvailability.DeleteException

	CreateBooking *ucBooking.CreateBooking
	DecideBooking *ucBooking.DecideBooking
	CancelBooking *ucBooking.CancelBooking
	ListBookings  *ucBooking.ListBookings
	Sweep         *ucBooking.SweepExpired

	// nil sem gateway configurado
	Reconcile *reconcile.Reconcile
}

func NewServices(
	infra *Infra,
	cfg *config.Config,
	logger *zap.Logger,
	clock timezone.Clock,
) *Services {

	s := &Services{
		Audit:  audit.NewDispatcher(infra.AuditWriter, logger),
		Notify: notify.NewDispatcher(infra.Notifier, logger),
	}

	deps := ucBooking.Deps{
		Repo:   infra.Bookings,
		Audit:  s.Audit,
		Notify: s.Notify,
		Clock:  clock,
		Logger: logger,
		Settings: ucBooking.Settings{
			DefaultResponseWindow: cfg.DefaultResponseWindow,
			DefaultCurrency:       cfg.DefaultCurrency,
			SweepBatch:            cfg.SweepBatch,
		},
	}

	if infra.Gateway != nil {
		opts := []payment.Option{payment.WithClock(clock)}
		if infra.Deduper != nil {
			opts = append(opts, payment.WithDeduper(infra.Deduper))
		}
		s.Payments = payment.NewOrchestrator(infra.Bookings, infra.Gateway, s.Audit, s.Notify, logger, opts...)
		deps.Payments = s.Payments
	}

	// ======================================================
	// 🧠 AVAILABILITY
	// ======================================================
	loader := ucAvailability.NewSlotLoader(infra.Availability, infra.Bookings, infra.Blocks)

	s.GetSlots = ucAvailability.NewGetSlots(infra.Bookings, loader, clock)
	s.UpsertRule = ucAvailability.NewUpsertRule(infra.Availability, s.Audit)
	s.ListRules = ucAvailability.NewListRules(infra.Availability)
	s.UpsertException = ucAvailability.NewUpsertException(infra.Availability, s.Audit)
	s.DeleteException = ucAvailability.NewDeleteException(infra.Availability, s.Audit)

	// ======================================================
	// 🧠 BOOKINGS
	// ======================================================
	s.CreateBooking = ucBooking.NewCreateBooking(deps, loader)
	s.DecideBooking = ucBooking.NewDecideBooking(deps)
	s.CancelBooking = ucBooking.NewCancelBooking(deps)
	s.ListBookings = ucBooking.NewListBookings(infra.Bookings)

	s.Sweep = ucBooking.NewSweepExpired(deps, infra.Locker)

	if s.Payments != nil {
		s.Reconcile = reconcile.New(infra.Bookings, s.Payments, infra.Reports, clock, logger, cfg.SweepBatch)
	}

	return s
}

// Close esvazia as filas de auditoria e notificação.
func (s *Services) Close() {
	s.Audit.Close()
	s.Notify.Close()
}
