// Package payment conduz o hold de pagamento de uma reserva
// (autorizar, capturar, liberar) de forma eventualmente consistente.
//
// Toda escrita de hold é condicionada aos estados de origem permitidos,
// então chamadas concorrentes (usuário, varredura, webhook) nunca fazem
// o hold regredir. Falhas de pagamento não desfazem a transição da reserva.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/lesson-scheduler/internal/audit"
	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
	"github.com/BruksfildServices01/lesson-scheduler/internal/notify"
	"github.com/BruksfildServices01/lesson-scheduler/internal/timezone"
)

type Outcome string

const (
	OutcomeDone        Outcome = "done"
	OutcomeAlreadyDone Outcome = "already_done"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeFailed      Outcome = "failed"
)

var ErrPaymentDeclined = httperr.ErrValidation("payment_declined")

const declinedReason = "payment_declined"

type Orchestrator struct {
	repo    booking.Repository
	gateway Gateway
	audit   *audit.Dispatcher
	notify  *notify.Dispatcher
	dedupe  Deduper
	clock   timezone.Clock
	logger  *zap.Logger
	tracer  trace.Tracer

	maxRetries  uint64
	backoffBase time.Duration
}

type Option func(*Orchestrator)

func WithRetry(max uint64, base time.Duration) Option {
	return func(o *Orchestrator) {
		o.maxRetries = max
		o.backoffBase = base
	}
}

func WithDeduper(d Deduper) Option {
	return func(o *Orchestrator) { o.dedupe = d }
}

func WithClock(c timezone.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

func NewOrchestrator(
	repo booking.Repository,
	gateway Gateway,
	auditDispatcher *audit.Dispatcher,
	notifier *notify.Dispatcher,
	logger *zap.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		repo:        repo,
		gateway:     gateway,
		audit:       auditDispatcher,
		notify:      notifier,
		clock:       timezone.SystemClock{},
		logger:      logger,
		tracer:      otel.Tracer("lesson-scheduler/payment"),
		maxRetries:  3,
		backoffBase: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) backoff() retry.Backoff {
	return retry.WithMaxRetries(o.maxRetries, retry.NewExponential(o.backoffBase))
}

// ======================================================
// AUTHORIZE
// ======================================================

// Authorize pede o hold ao gateway para uma reserva já gravada com hold authorizing.
// Falha ambígua deixa o hold em authorizing para ser resolvido depois.
func (o *Orchestrator) Authorize(
	ctx context.Context,
	b *models.Booking,
	req AuthorizeRequest,
) (Outcome, error) {

	ctx, span := o.tracer.Start(ctx, "payment.authorize", trace.WithAttributes(bookingAttrs(b)...))
	defer span.End()

	res, err := o.gateway.Authorize(ctx, req)
	if err != nil && !errors.Is(err, ErrDeclined) {
		span.RecordError(err)
		o.logger.Warn("authorize ambiguous, hold stays authorizing",
			zap.Uint("booking_id", b.ID),
			zap.Error(err),
		)
		o.record(b, "hold_authorize_pending", map[string]string{"error": err.Error()})
		return OutcomeSkipped, nil
	}

	if errors.Is(err, ErrDeclined) || res.State == StateDeclined {
		span.SetStatus(codes.Error, "declined")
		if err := o.decline(ctx, b); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeDone, ErrPaymentDeclined
	}

	if res.State != StateAuthorized {
		// pendente no gateway: o webhook ou a reconciliação completam
		o.record(b, "hold_authorize_pending", map[string]string{"state": string(res.State)})
		return OutcomeSkipped, nil
	}

	return o.markHeld(ctx, b, res.Ref)
}

// decline cancela a reserva e encerra o hold sem chamar o gateway.
func (o *Orchestrator) decline(ctx context.Context, b *models.Booking) error {
	now := o.clock.Now()

	updated, ok, err := o.repo.TransitionStatus(ctx, b.ID, booking.Transition{
		To:     booking.StatusCancelled,
		At:     now,
		Reason: declinedReason,
	})
	if err != nil {
		return fmt.Errorf("cancel declined booking: %w", err)
	}
	if updated != nil {
		*b = *updated
	}
	if ok {
		o.notify.Send(notify.FromBooking(notify.BookingCancelled, b, now))
	}

	if _, err := o.advance(ctx, b, booking.HoldReleased, nil); err != nil {
		return err
	}
	o.record(b, "hold_declined", nil)
	return nil
}

func (o *Orchestrator) markHeld(ctx context.Context, b *models.Booking, ref string) (Outcome, error) {
	ok, err := o.advance(ctx, b, booking.HoldHeld, &ref)
	if err != nil {
		return OutcomeFailed, err
	}
	if !ok {
		return OutcomeAlreadyDone, nil
	}
	o.record(b, "hold_held", map[string]string{"hold_ref": ref})
	return OutcomeDone, nil
}

// ======================================================
// CAPTURE
// ======================================================

func (o *Orchestrator) Capture(ctx context.Context, b *models.Booking) (Outcome, error) {
	ctx, span := o.tracer.Start(ctx, "payment.capture", trace.WithAttributes(bookingAttrs(b)...))
	defer span.End()

	switch booking.HoldOf(b) {
	case booking.HoldCaptured:
		return OutcomeAlreadyDone, nil
	case booking.HoldNone, booking.HoldReleased, booking.HoldCaptureFailed:
		return OutcomeSkipped, nil
	case booking.HoldAuthorizing:
		resolved, err := o.resolve(ctx, b)
		if err != nil || !resolved {
			return OutcomeSkipped, nil
		}
	}

	ref := derefString(b.HoldRef)
	err := retry.Do(ctx, o.backoff(), func(ctx context.Context) error {
		capErr := o.gateway.Capture(ctx, ref)
		if capErr == nil {
			return nil
		}

		// o gateway é a fonte da verdade antes de qualquer nova tentativa
		state, stateErr := o.gateway.HoldState(ctx, ref)
		if stateErr == nil && state == StateCaptured {
			return nil
		}
		if stateErr == nil && state == StateAuthorized && IsTransient(capErr) {
			return retry.RetryableError(capErr)
		}
		return capErr
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "capture failed")

		if _, advErr := o.advance(ctx, b, booking.HoldCaptureFailed, nil); advErr != nil {
			return OutcomeFailed, advErr
		}
		o.logger.Error("capture failed",
			zap.Uint("booking_id", b.ID),
			zap.String("hold_ref", ref),
			zap.Error(err),
		)
		o.record(b, "hold_capture_failed", map[string]string{"hold_ref": ref, "error": err.Error()})
		o.notify.Send(notify.FromBooking(notify.CaptureFailed, b, o.clock.Now()))
		return OutcomeFailed, fmt.Errorf("capture hold %s: %w", ref, err)
	}

	ok, err := o.advance(ctx, b, booking.HoldCaptured, nil)
	if err != nil {
		return OutcomeFailed, err
	}
	if !ok {
		return OutcomeAlreadyDone, nil
	}
	o.record(b, "hold_captured", map[string]string{"hold_ref": ref})
	return OutcomeDone, nil
}

// ======================================================
// RELEASE
// ======================================================

// Release libera o hold. Se o gateway continuar falhando o hold fica
// held para a reconciliação.
func (o *Orchestrator) Release(ctx context.Context, b *models.Booking) (Outcome, error) {
	ctx, span := o.tracer.Start(ctx, "payment.release", trace.WithAttributes(bookingAttrs(b)...))
	defer span.End()

	switch booking.HoldOf(b) {
	case booking.HoldReleased, booking.HoldCaptured, booking.HoldCaptureFailed:
		return OutcomeAlreadyDone, nil
	case booking.HoldNone:
		return OutcomeSkipped, nil
	case booking.HoldAuthorizing:
		resolved, err := o.resolve(ctx, b)
		if err == nil && booking.HoldOf(b) == booking.HoldReleased {
			return OutcomeDone, nil
		}
		if err != nil || !resolved {
			return OutcomeSkipped, nil
		}
	}

	ref := derefString(b.HoldRef)
	err := retry.Do(ctx, o.backoff(), func(ctx context.Context) error {
		if err := o.gateway.Cancel(ctx, ref); err != nil {
			if IsTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		o.logger.Warn("release failed, hold kept for reconciliation",
			zap.Uint("booking_id", b.ID),
			zap.String("hold_ref", ref),
			zap.Error(err),
		)
		o.record(b, "hold_release_failed", map[string]string{"hold_ref": ref, "error": err.Error()})
		return OutcomeFailed, fmt.Errorf("release hold %s: %w", ref, err)
	}

	ok, err := o.advance(ctx, b, booking.HoldReleased, nil)
	if err != nil {
		return OutcomeFailed, err
	}
	if !ok {
		return OutcomeAlreadyDone, nil
	}
	o.record(b, "hold_released", map[string]string{"hold_ref": ref})
	return OutcomeDone, nil
}

// ======================================================
// DRIVE / WEBHOOK
// ======================================================

// Drive leva o hold ao estado que o status da reserva implica.
func (o *Orchestrator) Drive(ctx context.Context, b *models.Booking) (Outcome, error) {
	if booking.MethodOf(b) != booking.PaymentHeldRemote {
		return OutcomeSkipped, nil
	}

	switch booking.StatusOf(b) {
	case booking.StatusPending:
		if booking.HoldOf(b) != booking.HoldAuthorizing {
			return OutcomeAlreadyDone, nil
		}
		resolved, err := o.resolve(ctx, b)
		if err != nil {
			return OutcomeFailed, err
		}
		if !resolved && booking.HoldOf(b) != booking.HoldReleased {
			return OutcomeSkipped, nil
		}
		return OutcomeDone, nil
	case booking.StatusConfirmed:
		return o.Capture(ctx, b)
	default:
		return o.Release(ctx, b)
	}
}

type Notification struct {
	ID  string
	Ref string
}

// HandleNotification confirma a notificação buscando o hold no gateway,
// liga o hold à reserva pela sessão e conduz o hold conforme a reserva.
func (o *Orchestrator) HandleNotification(ctx context.Context, n Notification) (Outcome, error) {
	ctx, span := o.tracer.Start(ctx, "payment.notification",
		trace.WithAttributes(attribute.String("hold_ref", n.Ref)),
	)
	defer span.End()

	if o.dedupe != nil && n.ID != "" {
		fresh, err := o.dedupe.Claim(ctx, n.ID)
		if err != nil {
			o.logger.Warn("dedupe unavailable", zap.Error(err))
		} else if !fresh {
			return OutcomeAlreadyDone, nil
		}
	}

	outcome, err := o.handleNotification(ctx, n)
	if err != nil && o.dedupe != nil && n.ID != "" {
		_ = o.dedupe.Forget(ctx, n.ID)
	}
	return outcome, err
}

func (o *Orchestrator) handleNotification(ctx context.Context, n Notification) (Outcome, error) {
	hold, err := o.gateway.Lookup(ctx, n.Ref)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("lookup hold %s: %w", n.Ref, err)
	}
	if hold.SessionID == "" {
		return OutcomeSkipped, nil
	}

	b, err := o.repo.GetBookingBySession(ctx, hold.SessionID)
	if err != nil {
		if httperr.KindOf(err) == httperr.KindNotFound {
			return OutcomeSkipped, nil
		}
		return OutcomeFailed, err
	}

	current := booking.HoldOf(b)

	switch hold.State {
	case StateDeclined:
		if current != booking.HoldAuthorizing {
			return OutcomeAlreadyDone, nil
		}
		if err := o.decline(ctx, b); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeDone, nil

	case StateReleased:
		if !current.NeedsGateway() {
			return OutcomeAlreadyDone, nil
		}
		if _, err := o.advance(ctx, b, booking.HoldReleased, &hold.Ref); err != nil {
			return OutcomeFailed, err
		}
		o.record(b, "hold_released", map[string]string{"hold_ref": hold.Ref, "source": "gateway"})
		return OutcomeDone, nil

	case StateAuthorized, StateCaptured:
		if current == booking.HoldAuthorizing {
			outcome, err := o.markHeld(ctx, b, hold.Ref)
			if err != nil || booking.StatusOf(b) == booking.StatusPending {
				return outcome, err
			}
		}
	}

	return o.Drive(ctx, b)
}

// ======================================================
// HELPERS
// ======================================================

// resolve tenta achar o hold de uma reserva ainda em authorizing.
func (o *Orchestrator) resolve(ctx context.Context, b *models.Booking) (bool, error) {
	session := derefString(b.PaymentSessionID)
	if session == "" {
		return false, nil
	}

	ref, found, err := o.gateway.ResolveReferenceFromSession(ctx, session)
	if err != nil {
		o.logger.Warn("resolve session failed", zap.Uint("booking_id", b.ID), zap.Error(err))
		return false, err
	}
	if !found {
		return false, nil
	}

	// só vira held o que o gateway confirma como reservado
	hold, err := o.gateway.Lookup(ctx, ref)
	if err != nil {
		o.logger.Warn("lookup resolved hold failed", zap.Uint("booking_id", b.ID), zap.Error(err))
		return false, err
	}

	switch hold.State {
	case StateAuthorized, StateCaptured:
		if _, err := o.markHeld(ctx, b, ref); err != nil {
			return false, err
		}
		return booking.HoldOf(b) == booking.HoldHeld, nil

	case StateDeclined, StateReleased:
		if err := o.decline(ctx, b); err != nil {
			return false, err
		}
		return false, nil

	default:
		return false, nil
	}
}

// advance grava o hold e recarrega a reserva quando outro dono venceu.
func (o *Orchestrator) advance(
	ctx context.Context,
	b *models.Booking,
	to booking.HoldStatus,
	ref *string,
) (bool, error) {

	ok, err := o.repo.AdvanceHold(ctx, b.ID, booking.HoldUpdate{
		To:  to,
		Ref: ref,
		At:  o.clock.Now(),
	})
	if err != nil {
		return false, fmt.Errorf("advance hold to %s: %w", to, err)
	}

	if ok {
		b.HoldStatus = string(to)
		if ref != nil {
			b.HoldRef = ref
		}
		return true, nil
	}

	fresh, err := o.repo.GetBooking(ctx, b.ID)
	if err != nil {
		return false, err
	}
	*b = *fresh
	return false, nil
}

func (o *Orchestrator) record(b *models.Booking, action string, meta map[string]string) {
	trainerID := b.TrainerID
	o.audit.Dispatch(audit.Event{
		ClubID:    b.ClubID,
		TrainerID: &trainerID,
		Action:    action,
		Entity:    "booking",
		EntityID:  audit.Uint(b.ID),
		Metadata:  meta,
	})
}

func bookingAttrs(b *models.Booking) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("booking.id", int64(b.ID)),
		attribute.String("booking.status", b.Status),
		attribute.String("booking.hold_status", b.HoldStatus),
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
