package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/airsante/airwatch/internal/airquality"
	"github.com/airsante/airwatch/internal/asthme"
	"github.com/airsante/airwatch/internal/dataset"
	"github.com/airsante/airwatch/internal/geodair"
	"github.com/airsante/airwatch/internal/history"
	"github.com/airsante/airwatch/internal/logging"
	"github.com/airsante/airwatch/internal/station"
	"github.com/airsante/airwatch/internal/table"
)

// Runner wires the processing stages between dataset reads and writes. All
// transformation happens in memory; each dataset is written once, at the end
// of its branch, so an aborted run never leaves partial state behind.
type Runner struct {
	store  dataset.Store
	client *geodair.Client
	logger *logging.Logger
}

// NewRunner creates a Runner.
func NewRunner(store dataset.Store, client *geodair.Client, logger *logging.Logger) *Runner {
	return &Runner{store: store, client: client, logger: logger}
}

// RunDaily executes one daily pipeline pass for the given measurement date:
// refresh the station registry, fetch each pollutant's daily peaks, enrich
// and deduplicate into the daily dataset, then derive the IQA and weekly
// datasets from it.
func (r *Runner) RunDaily(ctx context.Context, date time.Time) error {
	runID := uuid.NewString()[:8]
	r.logger.Info("[run %s] daily pipeline for %s", runID, date.Format("2006-01-02"))

	reg, err := r.refreshStations(ctx, runID)
	if err != nil {
		return err
	}

	batch, err := r.fetchDailyBatch(ctx, runID, date)
	if err != nil {
		return err
	}

	daily, err := r.mergeDaily(ctx, runID, batch, reg)
	if err != nil {
		return err
	}

	if err := r.computeIQA(ctx, runID, daily); err != nil {
		return err
	}
	return r.mergeWeekly(ctx, runID, daily)
}

// refreshStations replaces the station registry dataset with today's export
// and returns the parsed registry.
func (r *Runner) refreshStations(ctx context.Context, runID string) (*station.Registry, error) {
	raw, err := r.client.FetchStations(ctx, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("refresh stations: %w", err)
	}
	snapshot := airquality.NormalizeHeaders(raw)
	if err := r.store.Write(ctx, dataset.Stations, snapshot); err != nil {
		return nil, fmt.Errorf("write station dataset: %w", err)
	}

	reg, err := station.FromTable(snapshot)
	if err != nil {
		return nil, err
	}
	r.logger.Info("[run %s] station registry refreshed (%d sites)", runID, reg.Len())
	return reg, nil
}

// fetchDailyBatch pulls the daily peak export for every tracked pollutant
// and concatenates them into one normalized batch.
func (r *Runner) fetchDailyBatch(ctx context.Context, runID string, date time.Time) (*table.Table, error) {
	parts := make([]*table.Table, 0, len(geodair.Pollutants))
	for _, p := range geodair.Pollutants {
		t, err := r.client.FetchDailyMax(ctx, date, p.Code)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", p.Name, err)
		}
		r.logger.Debug("[run %s] fetched %d %s rows", runID, len(t.Rows), p.Name)
		parts = append(parts, airquality.NormalizeHeaders(t))
	}
	batch := table.Concat(parts...)
	r.logger.Info("[run %s] fetched %d measurement rows", runID, len(batch.Rows))
	return batch, nil
}

// mergeDaily enriches the new batch, appends it to the daily history and
// rewrites the dataset deduplicated and reordered.
func (r *Runner) mergeDaily(ctx context.Context, runID string, batch *table.Table, reg *station.Registry) (*table.Table, error) {
	enriched := airquality.Enrich(batch, reg)

	hist, err := r.store.Read(ctx, dataset.Daily)
	if err != nil {
		if !errors.Is(err, dataset.ErrNotFound) {
			return nil, fmt.Errorf("read daily dataset: %w", err)
		}
		hist = nil
	}

	combined := table.Concat(hist, enriched)
	deduped, err := airquality.Deduplicate(combined)
	if err != nil {
		return nil, fmt.Errorf("deduplicate daily: %w", err)
	}
	ordered, err := airquality.Reorder(deduped)
	if err != nil {
		return nil, fmt.Errorf("reorder daily: %w", err)
	}

	if err := r.store.Write(ctx, dataset.Daily, ordered); err != nil {
		return nil, fmt.Errorf("write daily dataset: %w", err)
	}
	r.logger.Info("[run %s] daily dataset now holds %d rows", runID, len(ordered.Rows))
	return ordered, nil
}

// computeIQA rewrites the IQA dataset from the full daily history.
func (r *Runner) computeIQA(ctx context.Context, runID string, daily *table.Table) error {
	iqa, err := airquality.ComputeIQA(daily)
	if err != nil {
		return fmt.Errorf("compute iqa: %w", err)
	}
	if err := r.store.Write(ctx, dataset.IQADaily, iqa); err != nil {
		return fmt.Errorf("write iqa dataset: %w", err)
	}
	r.logger.Info("[run %s] iqa dataset rebuilt (%d department-days)", runID, len(iqa.Rows))
	return nil
}

// mergeWeekly rolls the daily history into weekly maxima and merges them
// into the weekly dataset, later computations superseding earlier ones.
func (r *Runner) mergeWeekly(ctx context.Context, runID string, daily *table.Table) error {
	weeklyBatch, err := airquality.AggregateWeekly(daily)
	if err != nil {
		return fmt.Errorf("aggregate weekly: %w", err)
	}

	hist, err := r.store.Read(ctx, dataset.Weekly)
	if err != nil {
		if !errors.Is(err, dataset.ErrNotFound) {
			return fmt.Errorf("read weekly dataset: %w", err)
		}
		hist = nil
	}

	merged := airquality.MergeWeekly(hist, weeklyBatch, r.logger)
	if err := r.store.Write(ctx, dataset.Weekly, merged); err != nil {
		return fmt.Errorf("write weekly dataset: %w", err)
	}
	r.logger.Info("[run %s] weekly dataset now holds %d rows", runID, len(merged.Rows))
	return nil
}

// RunAsthme merges a scraped emergency-visit CSV into the weekly asthma
// table. An unchanged week is a normal outcome, logged and skipped.
func (r *Runner) RunAsthme(ctx context.Context, csvPath string, now time.Time) error {
	runID := uuid.NewString()[:8]

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open visit csv: %w", err)
	}
	scraped, err := table.Read(f, ',')
	f.Close()
	if err != nil {
		return fmt.Errorf("parse visit csv: %w", err)
	}

	hist, err := r.store.Read(ctx, dataset.AsthmeWeekly)
	if err != nil {
		if !errors.Is(err, dataset.ErrNotFound) {
			return fmt.Errorf("read asthme dataset: %w", err)
		}
		hist = nil
	}

	merged, err := asthme.Update(hist, scraped, now)
	if err != nil {
		if errors.Is(err, history.ErrNoChange) {
			r.logger.Info("[run %s] asthme dataset unchanged, not written", runID)
			return nil
		}
		return fmt.Errorf("merge asthme week: %w", err)
	}

	if err := r.store.Write(ctx, dataset.AsthmeWeekly, merged); err != nil {
		return fmt.Errorf("write asthme dataset: %w", err)
	}
	r.logger.Info("[run %s] asthme dataset now holds %d weeks", runID, len(merged.Rows))
	return nil
}
