package booking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const sweepLockKey = "lesson-scheduler:sweep"

// Locker evita que duas instâncias varram ao mesmo tempo.
// A correção não depende dele: cada expiração é uma escrita condicionada.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
}

type SweepExpired struct {
	deps   Deps
	locker Locker
}

func NewSweepExpired(deps Deps, locker Locker) *SweepExpired {
	return &SweepExpired{deps: deps.normalized(), locker: locker}
}

// Execute expira as reservas pending vencidas e libera seus holds.
// Devolve quantas reservas foram expiradas nesta execução.
func (uc *SweepExpired) Execute(ctx context.Context) (int, error) {
	d := uc.deps

	if uc.locker != nil {
		unlock, ok, err := uc.locker.TryLock(ctx, sweepLockKey, time.Minute)
		switch {
		case err != nil:
			d.Logger.Warn("sweep lock unavailable, running anyway", zap.Error(err))
		case !ok:
			d.Logger.Debug("sweep already running elsewhere")
			return 0, nil
		default:
			defer unlock()
		}
	}

	total := 0
	for {
		expired, err := d.Repo.ExpireDue(ctx, d.Clock.Now(), d.Settings.SweepBatch)
		if err != nil {
			return total, fmt.Errorf("expire due bookings: %w", err)
		}

		for i := range expired {
			d.afterTransition(ctx, &expired[i], nil)
		}
		total += len(expired)

		if len(expired) < d.Settings.SweepBatch {
			break
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}

	if total > 0 {
		d.Logger.Info("expired bookings swept", zap.Int("count", total))
	}
	return total, nil
}
