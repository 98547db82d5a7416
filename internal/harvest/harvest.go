// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest drives the sequential citation harvest: one DOI at a time,
// each source in a fixed order, a shared rate limiter between external
// calls, and periodic checkpoints so an interrupted run can resume.
package harvest

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-engine/internal/report"
	"github.com/pdiddy/citation-engine/internal/sources"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// now is stubbed in tests to get deterministic processed_at stamps.
var now = time.Now

// Result holds the outcome of a harvest run.
type Result struct {
	// Records is the full result table in input order: checkpointed records
	// first, then records fetched this run.
	Records []types.CitationRecord

	// Fetched is how many DOIs were processed this run.
	Fetched int

	// Resumed is how many records were loaded from the checkpoint.
	Resumed int

	// Unavailable counts individual source failures across the run.
	Unavailable int
}

// Run processes dois sequentially. Each DOI is queried against every source;
// a source failure is recorded as an unavailable count and the run moves on.
// Every cfg.CheckpointEvery completed DOIs the full table is flushed to
// cfg.CheckpointFile, and once more after the last DOI. On context
// cancellation Run flushes a best-effort checkpoint and returns the partial
// result together with ctx.Err().
//
// Progress output goes to w; log carries the per-source warnings.
func Run(ctx context.Context, dois []string, srcs []sources.Source, cfg types.HarvestConfig, log *zap.SugaredLogger, w io.Writer) (Result, error) {
	var result Result

	records := loadCheckpoint(cfg, log)
	done := make(map[string]bool, len(records))
	for _, rec := range records {
		done[rec.DOI] = true
	}

	var remaining []string
	for _, doi := range dois {
		if !done[doi] {
			remaining = append(remaining, doi)
		}
	}
	result.Records = records
	result.Resumed = len(records)

	if result.Resumed > 0 {
		log.Infow("resuming from checkpoint",
			"checkpoint", cfg.CheckpointFile,
			"already_processed", result.Resumed,
			"remaining", len(remaining))
	} else {
		log.Infow("starting harvest", "dois", len(remaining))
	}

	limiter := newLimiter(cfg.Delay)
	bar := progressbar.NewOptions(len(remaining),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("harvesting"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	for i, doi := range remaining {
		rec, failures, err := fetchRecord(ctx, doi, srcs, limiter, log)
		if err != nil {
			// Cancelled mid-DOI: keep what we have on disk and bail.
			flush(cfg, result.Records, log)
			return result, err
		}

		result.Records = append(result.Records, rec)
		result.Fetched++
		result.Unavailable += failures
		bar.Add(1)

		if cfg.CheckpointEvery > 0 && (i+1)%cfg.CheckpointEvery == 0 {
			flush(cfg, result.Records, log)
		}
	}

	flush(cfg, result.Records, log)
	return result, nil
}

// fetchRecord queries every source for one DOI. The only error it returns is
// context cancellation; source failures become unavailable counts.
func fetchRecord(ctx context.Context, doi string, srcs []sources.Source, limiter *rate.Limiter, log *zap.SugaredLogger) (types.CitationRecord, int, error) {
	counts := make(map[string]types.Count, len(srcs))
	failures := 0

	for _, src := range srcs {
		if err := limiter.Wait(ctx); err != nil {
			return types.CitationRecord{}, failures, err
		}

		count, err := src.FetchCount(ctx, doi)
		if err != nil {
			if ctx.Err() != nil {
				return types.CitationRecord{}, failures, ctx.Err()
			}
			log.Warnw("source unavailable", "source", src.Name(), "doi", doi, "error", err)
			counts[src.Name()] = types.Count{}
			failures++
			continue
		}
		counts[src.Name()] = types.CountOf(count)
	}

	rec := types.CitationRecord{
		DOI:         doi,
		CrossRef:    counts["crossref"],
		OpenAlex:    counts["openalex"],
		Dimensions:  counts["dimensions"],
		ProcessedAt: now(),
	}
	rec.MaxCitations = types.MaxOf(rec.CrossRef, rec.OpenAlex, rec.Dimensions)
	return rec, failures, nil
}

// newLimiter builds the shared pacing limiter. Burst stays at 1 so the
// configured interval always separates consecutive calls. A non-positive
// delay disables pacing.
func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// loadCheckpoint reads the prior run's records when resuming. A missing file
// starts a fresh run; an unreadable one is warned about and ignored rather
// than blocking the harvest.
func loadCheckpoint(cfg types.HarvestConfig, log *zap.SugaredLogger) []types.CitationRecord {
	if !cfg.Resume || cfg.CheckpointFile == "" {
		return nil
	}
	if _, err := os.Stat(cfg.CheckpointFile); err != nil {
		return nil
	}

	records, err := report.ReadCSV(cfg.CheckpointFile)
	if err != nil {
		log.Warnw("checkpoint unreadable, starting fresh", "checkpoint", cfg.CheckpointFile, "error", err)
		return nil
	}
	return records
}

// flush persists the result table. A write failure costs resumability, not
// the run, so it is logged and swallowed.
func flush(cfg types.HarvestConfig, records []types.CitationRecord, log *zap.SugaredLogger) {
	if cfg.CheckpointFile == "" || len(records) == 0 {
		return
	}
	if err := report.WriteCSV(cfg.CheckpointFile, records); err != nil {
		log.Warnw("checkpoint write failed", "checkpoint", cfg.CheckpointFile, "error", err)
		return
	}
	log.Infow("checkpoint saved", "records", len(records), "checkpoint", cfg.CheckpointFile)
}
