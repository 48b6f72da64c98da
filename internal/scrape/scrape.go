// Package scrape drives the acquisition pipeline for one (boss, gate,
// difficulty) selection: discover unseen encounter ids page by page,
// fetch their full records, flatten and persist them batch by batch.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"arkscrape/internal/encounter"
	"arkscrape/internal/logsapi"
	"arkscrape/internal/logstore"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("scrape")
var meter = otel.Meter("scrape")

// Client is the slice of the fetch client the orchestrator needs.
type Client interface {
	ListIDs(ctx context.Context, f logsapi.Filter, page, pageSize int, known map[int64]struct{}) ([]int64, error)
	FetchEncounters(ctx context.Context, ids []int64) ([]encounter.Raw, error)
}

type Options struct {
	// DataDir holds one database file per cache key.
	DataDir string
	// DatabaseURL overrides the local file with a libsql:// target.
	DatabaseURL string
	// PageSize must stay constant across resumed runs of the same cache
	// key; the store refuses a mismatch. Defaults to 25.
	PageSize int
	// MaxNewLogs stops the run once at least this many new logs were
	// fetched; the final batch is not split. 0 means no cap.
	MaxNewLogs int
	// FromScratch discards the previously stored table. The caller is
	// responsible for confirming this with the operator first.
	FromScratch bool
	Verbose     bool
}

type Summary struct {
	NewLogs int
	Batches int
	Weird   int
	Elapsed time.Duration
}

// Run executes the scrape loop until the service has no more unseen
// logs or the MaxNewLogs budget is met. Progress is durable through the
// last committed batch; any unrecovered client failure aborts the run
// with the store intact.
func Run(ctx context.Context, client Client, f logsapi.Filter, opts Options) (Summary, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(attribute.String("filter", f.String()))

	start := time.Now()
	if opts.PageSize <= 0 {
		opts.PageSize = 25
	}

	scrapedCounter, err := meter.Int64Counter(
		"arkscrape.encounters.scraped",
		metric.WithDescription("encounter logs fetched and persisted"),
	)
	if err != nil {
		return Summary{}, err
	}

	target := opts.DatabaseURL
	if target == "" {
		target = logstore.PathFor(opts.DataDir, f.CacheKey())
	}

	if opts.FromScratch {
		if opts.DatabaseURL != "" {
			return Summary{}, fmt.Errorf("from-scratch reset only works on local store files")
		}
		slog.Warn("starting from scratch, discarding stored logs", "target", target)
		if err := logstore.Remove(target); err != nil {
			return Summary{}, err
		}
	}

	store, err := logstore.Open(target)
	if err != nil {
		return Summary{}, err
	}
	defer store.Close()

	storedPageSize, err := store.PageSize(ctx)
	if err != nil {
		return Summary{}, err
	}
	if storedPageSize != 0 && storedPageSize != opts.PageSize {
		return Summary{}, fmt.Errorf(
			"store %s was scraped with page size %d, not %d; keep the page size constant or reset from scratch",
			f.CacheKey(), storedPageSize, opts.PageSize,
		)
	}
	if err := store.SetPageSize(ctx, opts.PageSize); err != nil {
		return Summary{}, err
	}

	known, err := store.KnownIDs(ctx)
	if err != nil {
		return Summary{}, err
	}
	slog.Info("fetching logs", "filter", f.String(), "known", len(known))

	var sum Summary
	for opts.MaxNewLogs == 0 || sum.NewLogs < opts.MaxNewLogs {
		// the listing position is derived from how much is already
		// stored, not tracked separately; that is what makes runs
		// resumable
		page := len(known)/opts.PageSize + 1

		batchStart := time.Now()
		ids, err := client.ListIDs(ctx, f, page, opts.PageSize, known)
		if err != nil {
			return sum, err
		}
		if len(ids) == 0 {
			slog.Info("no more new logs", "filter", f.String(), "page", page, "page_size", opts.PageSize)
			break
		}
		if opts.Verbose {
			slog.Info("found new logs", "count", len(ids), "elapsed", time.Since(batchStart))
		}

		raws, err := client.FetchEncounters(ctx, ids)
		if err != nil {
			return sum, err
		}

		var rows []encounter.Row
		var lastFight time.Time
		for _, raw := range raws {
			log, err := encounter.Parse(raw)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return sum, err
			}
			if log.Weird {
				sum.Weird++
			}
			rows = append(rows, log.Rows()...)
			lastFight = log.FightTime()
		}

		if err := store.AppendRows(ctx, rows); err != nil {
			return sum, err
		}
		for _, id := range ids {
			known[id] = struct{}{}
		}
		sum.NewLogs += len(ids)
		sum.Batches++
		scrapedCounter.Add(ctx, int64(len(ids)))

		if opts.Verbose {
			slog.Info(
				"batch complete",
				"batch", sum.Batches,
				"logs", len(ids),
				"total_new", sum.NewLogs,
				"last_fight", lastFight,
				"elapsed", time.Since(batchStart),
			)
		}
	}

	sum.Elapsed = time.Since(start)
	span.SetAttributes(
		attribute.Int("new_logs", sum.NewLogs),
		attribute.Int("batches", sum.Batches),
	)
	return sum, nil
}
