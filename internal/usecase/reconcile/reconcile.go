// Package reconcile reconduz holds que ficaram fora de sincronia com a
// reserva e exporta as capturas com falha para acompanhamento manual.
package reconcile

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
	"github.com/BruksfildServices01/lesson-scheduler/internal/payment"
	"github.com/BruksfildServices01/lesson-scheduler/internal/timezone"
)

type Driver interface {
	Drive(ctx context.Context, b *models.Booking) (payment.Outcome, error)
}

// ReportStore guarda o relatório gerado (bucket S3 em produção).
type ReportStore interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
}

type Result struct {
	Checked       int
	Driven        int
	Failed        int
	CaptureFailed int
	ReportKey     string
}

type Reconcile struct {
	repo    booking.Repository
	driver  Driver
	reports ReportStore
	clock   timezone.Clock
	logger  *zap.Logger
	batch   int

	// exportedUntil marca até onde as falhas de captura já foram exportadas.
	mu            sync.Mutex
	exportedUntil time.Time
}

func New(
	repo booking.Repository,
	driver Driver,
	reports ReportStore,
	clock timezone.Clock,
	logger *zap.Logger,
	batch int,
) *Reconcile {
	if batch <= 0 {
		batch = 100
	}
	return &Reconcile{
		repo:    repo,
		driver:  driver,
		reports: reports,
		clock:   clock,
		logger:  logger,
		batch:   batch,
	}
}

// Since faz a próxima execução exportar só as falhas de captura
// registradas depois de t.
func (uc *Reconcile) Since(t time.Time) {
	uc.mu.Lock()
	uc.exportedUntil = t
	uc.mu.Unlock()
}

func (uc *Reconcile) Execute(ctx context.Context) (Result, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	var res Result

	holds, err := uc.repo.ListHoldsToReconcile(ctx, uc.batch)
	if err != nil {
		return res, fmt.Errorf("list holds to reconcile: %w", err)
	}

	for i := range holds {
		b := &holds[i]
		res.Checked++

		outcome, err := uc.driver.Drive(ctx, b)
		switch {
		case err != nil:
			res.Failed++
			uc.logger.Warn("reconcile hold failed",
				zap.Uint("booking_id", b.ID),
				zap.String("status", b.Status),
				zap.Error(err),
			)
		case outcome == payment.OutcomeDone:
			res.Driven++
		}
	}

	cutoff := uc.clock.Now()
	f := booking.ListFilter{Hold: booking.HoldCaptureFailed}
	if !uc.exportedUntil.IsZero() {
		since := uc.exportedUntil
		f.UpdatedSince = &since
	}

	failed, err := uc.repo.ListBookings(ctx, f)
	if err != nil {
		return res, fmt.Errorf("list capture failures: %w", err)
	}
	res.CaptureFailed = len(failed)

	if len(failed) > 0 && uc.reports != nil {
		body, err := CaptureFailedCSV(failed)
		if err != nil {
			return res, err
		}

		key := fmt.Sprintf("reconciliation/capture_failed-%s.csv", uc.clock.Now().Format("20060102-150405"))
		if err := uc.reports.Upload(ctx, key, body, "text/csv"); err != nil {
			return res, fmt.Errorf("upload report: %w", err)
		}
		res.ReportKey = key
	}
	uc.exportedUntil = cutoff

	uc.logger.Info("reconciliation finished",
		zap.Int("checked", res.Checked),
		zap.Int("driven", res.Driven),
		zap.Int("failed", res.Failed),
		zap.Int("capture_failed", res.CaptureFailed),
	)
	return res, nil
}

var csvHeader = []string{
	"booking_id", "club_id", "trainer_id", "lesson_date", "start", "total_price",
	"currency", "hold_ref", "player_name", "player_email", "updated_at",
}

func CaptureFailedCSV(bookings []models.Booking) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, b := range bookings {
		ref := ""
		if b.HoldRef != nil {
			ref = *b.HoldRef
		}
		row := []string{
			strconv.FormatUint(uint64(b.ID), 10),
			strconv.FormatUint(uint64(b.ClubID), 10),
			strconv.FormatUint(uint64(b.TrainerID), 10),
			timezone.FormatDate(b.LessonDate),
			fmt.Sprintf("%02d:%02d", b.StartMin/60, b.StartMin%60),
			strconv.FormatFloat(b.TotalPrice, 'f', 2, 64),
			b.Currency,
			ref,
			b.PlayerName,
			b.PlayerEmail,
			b.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
