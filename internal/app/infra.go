// Package app monta as dependências a partir da configuração; cmd/api e
// cmd/sweep usam a mesma montagem.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/lesson-scheduler/internal/audit"
	"github.com/BruksfildServices01/lesson-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/lesson-scheduler/internal/db"
	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/lesson-scheduler/internal/infra/gcal"
	"github.com/BruksfildServices01/lesson-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/lesson-scheduler/internal/infra/mercadopago"
	"github.com/BruksfildServices01/lesson-scheduler/internal/infra/mq"
	"github.com/BruksfildServices01/lesson-scheduler/internal/infra/redislock"
	infraRepo "github.com/BruksfildServices01/lesson-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/lesson-scheduler/internal/infra/s3report"
	"github.com/BruksfildServices01/lesson-scheduler/internal/notify"
	"github.com/BruksfildServices01/lesson-scheduler/internal/payment"
	ucBooking "github.com/BruksfildServices01/lesson-scheduler/internal/usecase/booking"
	"github.com/BruksfildServices01/lesson-scheduler/internal/usecase/reconcile"
)

// Infra são os adaptadores concretos. Campos opcionais ficam nil quando o
// recurso não está configurado.
type Infra struct {
	Bookings     booking.Repository
	Availability availability.Repository
	Blocks       availability.BlockSource
	AuditWriter  audit.Writer
	Notifier     notify.Notifier

	Gateway payment.Gateway
	Locker  ucBooking.Locker
	Deduper payment.Deduper
	Reports reconcile.ReportStore

	Checks map[string]func(ctx context.Context) error

	closers []func() error
}

func NewInfra(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Infra, error) {
	infra := &Infra{Checks: map[string]func(ctx context.Context) error{}}

	// ======================================================
	// 🗄️ STORE
	// ======================================================
	var directory gcal.Directory
	var blocks availability.MultiSource

	switch cfg.Store {
	case config.StoreMemory:
		store := memory.New()
		Seed(store)
		logger.Warn("running with in-memory store; data is lost on restart")

		infra.Bookings = store
		infra.Availability = store
		infra.AuditWriter = store
		directory = store
		blocks = append(blocks, store)

	default:
		db, err := dbpkg.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		if err := dbpkg.Migrate(ctx, db, logger); err != nil {
			return nil, err
		}

		bookings := infraRepo.NewBookingGormRepository(db)
		infra.Bookings = bookings
		infra.Availability = infraRepo.NewAvailabilityGormRepository(db)
		infra.AuditWriter = audit.New(db)
		directory = bookings
		blocks = append(blocks, infraRepo.NewBlockingEventSource(db))

		infra.Checks["postgres"] = pingDB(db)
		infra.closers = append(infra.closers, closeDB(db))
	}

	// ======================================================
	// 📅 GOOGLE CALENDAR
	// ======================================================
	if cfg.GCalCredentialsFile != "" && len(cfg.GCalCalendars) > 0 {
		calendars, err := gcal.ParseCalendars(cfg.GCalCalendars)
		if err != nil {
			return nil, err
		}
		lister, err := gcal.NewAPILister(ctx, cfg.GCalCredentialsFile)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, gcal.New(lister, directory, calendars))
		logger.Info("google calendar blocking source enabled", zap.Int("clubs", len(calendars)))
	}
	infra.Blocks = blocks

	// ======================================================
	// 🔒 REDIS
	// ======================================================
	if cfg.RedisURL != "" {
		rdb, err := redislock.New(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		infra.Locker = rdb
		infra.Deduper = rdb
		infra.Checks["redis"] = rdb.Ping
		infra.closers = append(infra.closers, rdb.Close)
	}

	// ======================================================
	// 📣 NOTIFICATIONS
	// ======================================================
	if cfg.RabbitURL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.NotifyExchange)
		if err != nil {
			return nil, err
		}
		infra.Notifier = pub
		infra.closers = append(infra.closers, pub.Close)
	} else {
		infra.Notifier = notify.NewLogNotifier(logger)
	}

	// ======================================================
	// 💳 PAYMENT
	// ======================================================
	if cfg.MPAccessToken != "" {
		gw, err := mercadopago.New(cfg.MPAccessToken, cfg.MPNotificationURL)
		if err != nil {
			return nil, err
		}
		infra.Gateway = gw
	} else {
		logger.Warn("MP_ACCESS_TOKEN not set; held-remote bookings are disabled")
	}

	// ======================================================
	// 📦 REPORTS
	// ======================================================
	if cfg.S3Bucket != "" {
		infra.Reports = s3report.New(s3report.Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}

	return infra, nil
}

// Close fecha as conexões na ordem inversa da abertura.
func (i *Infra) Close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		_ = i.closers[j]()
	}
}

func pingDB(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func closeDB(db *gorm.DB) func() error {
	return func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("get sql.DB: %w", err)
		}
		return sqlDB.Close()
	}
}
