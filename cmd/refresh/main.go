package main

import (
	"context"
	"os"

	"lingua-board/config"
	"lingua-board/db"
	"lingua-board/eventbus"
	"lingua-board/generator"
	"lingua-board/logger"
	"lingua-board/pipeline"
	"lingua-board/repositories"
)

// One-shot refresh run for cron/scheduler use. Exits non-zero on failure so
// the scheduler can alert.
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	if v := cfg.Validate(); !v.Valid {
		logger.Log.Errorf("missing required configuration: %v", v.Missing)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		logger.Log.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}

	repo := repositories.NewQuoteRepository(db.Database())
	gen := generator.NewClient(cfg)

	opts := []pipeline.Option{}
	if brokers := eventbus.GetBrokers(); brokers != "" {
		bus, err := eventbus.NewKafkaEventBus(brokers)
		if err != nil {
			logger.Log.Errorf("failed to create event bus: %v", err)
			os.Exit(1)
		}
		defer bus.Close()
		opts = append(opts, pipeline.WithPublisher(eventbus.NewRunReportPublisher(bus)))
	}

	runner := pipeline.NewRunner(cfg, gen.GenerateBatch, repo, opts...)

	// The local invocation authorizes itself with the configured secret.
	report := runner.Run(ctx, cfg.TriggerSecret)
	if !report.Success {
		os.Exit(1)
	}
}
