package main

import (
	"context"
	"net/http"

	"github.com/rs/cors"

	"lingua-board/api/router"
	"lingua-board/config"
	"lingua-board/db"
	"lingua-board/eventbus"
	"lingua-board/generator"
	"lingua-board/logger"
	"lingua-board/pipeline"
	"lingua-board/repositories"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	if v := cfg.Validate(); !v.Valid {
		// The trigger endpoint reports this per run as well; failing here
		// surfaces it at deploy time instead.
		logger.Log.Errorf("missing required configuration: %v", v.Missing)
	}

	if err := db.Init(context.Background()); err != nil {
		logger.Log.Errorf("failed to initialize MongoDB: %v", err)
		return
	}

	repo := repositories.NewQuoteRepository(db.Database())
	gen := generator.NewClient(cfg)

	opts := []pipeline.Option{}
	if brokers := eventbus.GetBrokers(); brokers != "" {
		bus, err := eventbus.NewKafkaEventBus(brokers)
		if err != nil {
			logger.Log.Errorf("failed to create event bus: %v", err)
			return
		}
		defer bus.Close()
		opts = append(opts, pipeline.WithPublisher(eventbus.NewRunReportPublisher(bus)))
	}

	runner := pipeline.NewRunner(cfg, gen.GenerateBatch, repo, opts...)
	r := router.New(cfg, runner, repo)

	handler := cors.Default().Handler(r)
	logger.Log.Info("lingua-board API listening on :8080")
	if err := http.ListenAndServe(":8080", handler); err != nil && err != http.ErrServerClosed {
		logger.Log.Errorf("server stopped: %v", err)
	}
}
