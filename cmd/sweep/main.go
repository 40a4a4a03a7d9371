// Command sweep expira as reservas vencidas uma vez e sai; pensado para
// agendadores externos (cron, Kubernetes CronJob). Com -reconcile também
// reconduz os holds e exporta as capturas com falha.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/lesson-scheduler/internal/app"
	"github.com/BruksfildServices01/lesson-scheduler/internal/config"
	"github.com/BruksfildServices01/lesson-scheduler/internal/logging"
	"github.com/BruksfildServices01/lesson-scheduler/internal/timezone"
)

func main() {
	withReconcile := flag.Bool("reconcile", false, "também concilia os holds de pagamento")
	timeout := flag.Duration("timeout", 2*time.Minute, "tempo máximo de execução")
	since := flag.Duration("since", 0, "exporta só falhas de captura mais recentes que isso (0 exporta todas)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Env)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger, *withReconcile, *since, *timeout); err != nil {
		logger.Error("sweep failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(
	cfg *config.Config,
	logger *zap.Logger,
	withReconcile bool,
	since time.Duration,
	timeout time.Duration,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	infra, err := app.NewInfra(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	svc := app.NewServices(infra, cfg, logger, timezone.SystemClock{})
	defer svc.Close()

	n, err := svc.Sweep.Execute(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("expired %d bookings\n", n)

	if !withReconcile {
		return nil
	}
	if svc.Reconcile == nil {
		logger.Warn("reconcile skipped: payment gateway not configured")
		return nil
	}

	if since > 0 {
		svc.Reconcile.Since(time.Now().Add(-since))
	}

	res, err := svc.Reconcile.Execute(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("reconciled %d holds (%d driven, %d failed), %d capture failures\n",
		res.Checked, res.Driven, res.Failed, res.CaptureFailed)
	if res.ReportKey != "" {
		fmt.Printf("report: %s\n", res.ReportKey)
	}
	return nil
}
