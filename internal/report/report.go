// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report encodes harvest results as CSV, computes summary
// statistics, and writes the YAML run manifest. The checkpoint file uses the
// same CSV schema as the final export, so resume detection is plain CSV
// membership.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Columns is the CSV schema shared by checkpoints and final exports.
var Columns = []string{
	"doi",
	"crossref_citations",
	"openalex_citations",
	"dimensions_citations",
	"max_citations",
	"processed_at",
}

const fileStamp = "20060102_150405"

// CSVFileName returns the timestamped name of the final export.
func CSVFileName(t time.Time) string {
	return "citation_harvest_" + t.Format(fileStamp) + ".csv"
}

// ManifestFileName returns the timestamped name of the run manifest.
func ManifestFileName(t time.Time) string {
	return "citation_harvest_" + t.Format(fileStamp) + "_manifest.yaml"
}

// CheckpointFileName is the stable checkpoint name, so a rerun in the same
// output directory finds the previous run's progress.
const CheckpointFileName = "citation_harvest_checkpoint.csv"

// WriteCSV writes records to path in Columns order. The file is written to a
// temporary sibling and renamed into place, so an interrupted write never
// truncates an existing checkpoint.
func WriteCSV(path string, records []types.CitationRecord) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	w := csv.NewWriter(tmp)
	writeErr := w.Write(Columns)
	for _, rec := range records {
		if writeErr != nil {
			break
		}
		writeErr = w.Write([]string{
			rec.DOI,
			rec.CrossRef.String(),
			rec.OpenAlex.String(),
			rec.Dimensions.String(),
			fmt.Sprintf("%d", rec.MaxCitations),
			rec.ProcessedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
	if writeErr == nil {
		writeErr = w.Error()
	}

	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing CSV: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReadCSV loads records written by WriteCSV, preserving row order. A header
// row is required; empty count fields come back as unavailable counts.
func ReadCSV(path string) ([]types.CitationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty CSV", path)
	}
	if len(rows[0]) != len(Columns) {
		return nil, fmt.Errorf("%s: expected %d columns, got %d", path, len(Columns), len(rows[0]))
	}

	records := make([]types.CitationRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (types.CitationRecord, error) {
	var rec types.CitationRecord
	if len(row) != len(Columns) {
		return rec, fmt.Errorf("expected %d fields, got %d", len(Columns), len(row))
	}

	rec.DOI = row[0]

	var err error
	if rec.CrossRef, err = types.ParseCount(row[1]); err != nil {
		return rec, fmt.Errorf("crossref_citations: %w", err)
	}
	if rec.OpenAlex, err = types.ParseCount(row[2]); err != nil {
		return rec, fmt.Errorf("openalex_citations: %w", err)
	}
	if rec.Dimensions, err = types.ParseCount(row[3]); err != nil {
		return rec, fmt.Errorf("dimensions_citations: %w", err)
	}

	if _, err := fmt.Sscanf(row[4], "%d", &rec.MaxCitations); err != nil {
		return rec, fmt.Errorf("max_citations: %w", err)
	}

	if rec.ProcessedAt, err = time.Parse(time.RFC3339, row[5]); err != nil {
		return rec, fmt.Errorf("processed_at: %w", err)
	}
	return rec, nil
}

// SourceStats summarizes one source across a run.
type SourceStats struct {
	// Available is how many records carry a valid count from this source.
	Available int `json:"available" yaml:"available"`

	// Mean is the mean citation count over available records, 0 when none.
	Mean float64 `json:"mean" yaml:"mean"`
}

// Summary holds run-level statistics.
type Summary struct {
	Total      int         `json:"total" yaml:"total"`
	CrossRef   SourceStats `json:"crossref" yaml:"crossref"`
	OpenAlex   SourceStats `json:"openalex" yaml:"openalex"`
	Dimensions SourceStats `json:"dimensions" yaml:"dimensions"`
}

// Summarize computes totals and per-source means. Unavailable counts are
// excluded from the means rather than counted as zero.
func Summarize(records []types.CitationRecord) Summary {
	s := Summary{Total: len(records)}
	crossref := &accumulator{}
	openalex := &accumulator{}
	dimensions := &accumulator{}

	for _, rec := range records {
		crossref.add(rec.CrossRef)
		openalex.add(rec.OpenAlex)
		dimensions.add(rec.Dimensions)
	}

	s.CrossRef = crossref.stats()
	s.OpenAlex = openalex.stats()
	s.Dimensions = dimensions.stats()
	return s
}

type accumulator struct {
	n   int
	sum int
}

func (a *accumulator) add(c types.Count) {
	if c.Valid {
		a.n++
		a.sum += c.Value
	}
}

func (a *accumulator) stats() SourceStats {
	st := SourceStats{Available: a.n}
	if a.n > 0 {
		st.Mean = float64(a.sum) / float64(a.n)
	}
	return st
}

// FormatSummary writes a human-readable results block: a preview of the
// first rows and the per-source statistics.
func FormatSummary(w io.Writer, records []types.CitationRecord, sum Summary, previewRows int) {
	header := color.New(color.FgCyan, color.Bold)

	header.Fprintln(w, "CITATION HARVEST RESULTS")
	fmt.Fprintf(w, "%-40s  %9s  %9s  %10s  %5s\n",
		"DOI", "crossref", "openalex", "dimensions", "max")

	if previewRows <= 0 {
		previewRows = 10
	}
	shown := len(records)
	if shown > previewRows {
		shown = previewRows
	}
	for _, rec := range records[:shown] {
		fmt.Fprintf(w, "%-40s  %9s  %9s  %10s  %5d\n",
			truncate(rec.DOI, 40),
			orDash(rec.CrossRef), orDash(rec.OpenAlex), orDash(rec.Dimensions),
			rec.MaxCitations)
	}
	if len(records) > shown {
		fmt.Fprintf(w, "... showing first %d of %d results\n", shown, len(records))
	}

	header.Fprintln(w, "\nSUMMARY")
	fmt.Fprintf(w, "Total DOIs processed:     %d\n", sum.Total)
	fmt.Fprintf(w, "CrossRef mean citations:   %.2f (%d available)\n", sum.CrossRef.Mean, sum.CrossRef.Available)
	fmt.Fprintf(w, "OpenAlex mean citations:   %.2f (%d available)\n", sum.OpenAlex.Mean, sum.OpenAlex.Available)
	fmt.Fprintf(w, "Dimensions mean citations: %.2f (%d available)\n", sum.Dimensions.Mean, sum.Dimensions.Available)
}

func orDash(c types.Count) string {
	if !c.Valid {
		return "-"
	}
	return c.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
