package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/airsante/airwatch/internal/config"
	"github.com/airsante/airwatch/internal/dataset"
	"github.com/airsante/airwatch/internal/geodair"
	"github.com/airsante/airwatch/internal/logging"
	"github.com/airsante/airwatch/internal/pipeline"
	"github.com/airsante/airwatch/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("watcher failed: %v", err)
	}
}

func run() error {
	dateFlag := flag.String("date", "", "measurement date to process (YYYY-MM-DD, default yesterday)")
	asthmeCSV := flag.String("asthme-csv", "", "scraped asthma visit CSV to merge instead of a pollutant run")
	daemon := flag.Bool("daemon", false, "keep running and trigger the pipeline on FETCH_INTERVAL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	client := geodair.NewClient(httpClient, cfg.GeodairBaseURL, cfg.GeodairAPIKey, cfg.PollInterval, cfg.MaxPolls)
	runner := pipeline.NewRunner(store, client, logger)

	if *asthmeCSV != "" {
		return runner.RunAsthme(ctx, *asthmeCSV, time.Now().UTC())
	}

	if *daemon {
		sched := scheduler.New(runner, cfg.FetchInterval, logger)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()

		logger.Info("watcher daemon started (interval=%s)", cfg.FetchInterval)
		<-ctx.Done()
		return nil
	}

	if cfg.GeodairAPIKey == "" {
		return errors.New("GEODAIR_API_KEY is required")
	}

	date := time.Now().UTC().AddDate(0, 0, -1)
	if *dateFlag != "" {
		parsed, err := time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			return err
		}
		date = parsed
	}
	return runner.RunDaily(ctx, date)
}

func openStore(ctx context.Context, cfg config.Config) (dataset.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := dataset.NewPostgresStore(ctx, cfg.DatabaseURL, cfg.Schema)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}
	csv, err := dataset.NewCSVStore(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	return csv, func() {}, nil
}
