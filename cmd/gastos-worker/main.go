package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"gastos/internal/amqp"
	"gastos/internal/backend"
	"gastos/internal/cli"
	applog "gastos/internal/log"
	"gastos/internal/worker"
)

func main() {
	resync := flag.Bool("resync", false, "copy every table from the primary backend onto the spreadsheet before consuming")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}

	bcfg := backend.FromAppConfig(cfg)
	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)

	mirror, err := factory.CreateBackend(context.Background(), bcfg.MirrorConfig())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets mirror", applog.FieldError, err)
		os.Exit(1)
	}
	defer mirror.Close()

	mirrorWorker := worker.NewMirrorWorker(mirror.Store)

	if *resync {
		if err := resyncFromPrimary(logger, factory, bcfg, mirrorWorker); err != nil {
			logger.Error("Resync failed", applog.FieldError, err)
			mirror.Close()
			os.Exit(1)
		}
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		mirror.Close()
		os.Exit(1)
	}
	defer client.Close()

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	logger.Info("Starting gastos-worker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	if err := client.ConsumeRowEvents(ctx, mirrorWorker.HandleRowEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		return
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}

// resyncFromPrimary replays the primary backend onto the mirror. The primary
// is opened without publisher or cache so the copy reads current rows and
// emits no events.
func resyncFromPrimary(logger *applog.Logger, factory backend.Factory, bcfg backend.Config, w *worker.MirrorWorker) error {
	if !bcfg.Type.IsLocal() {
		logger.Info("Primary backend is the spreadsheet, nothing to resync")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	primaryCfg := bcfg
	primaryCfg.AMQPURL = ""
	primaryCfg.CacheTTL = 0

	primary, err := factory.CreateBackend(ctx, primaryCfg)
	if err != nil {
		return err
	}
	defer primary.Close()

	return w.ResyncAll(ctx, primary.Store)
}
