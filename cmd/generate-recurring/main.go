// Command generate-recurring runs the recurring generator once for today
// against the configured backend and prints how many rows it added.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gastos/internal/backend"
	"gastos/internal/cli"
	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/services"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentRecurring)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backend.FromAppConfig(cfg))
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		return 1
	}
	defer res.Close()

	n, err := services.NewRecurringProcessor(res.Store).GenerateForCurrentPeriod(ctx, core.DateOf(time.Now()))
	fmt.Println(n)
	if err != nil {
		// Every generator failure is a skipped run, reported apart from
		// start-up failures.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return 2
	}
	return 0
}
