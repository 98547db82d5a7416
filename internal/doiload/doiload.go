// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package doiload reads DOI lists from text files, CSV files, or a manual
// comma-separated string, and normalizes them for harvesting.
package doiload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoDOIs is returned when a source yields no usable DOIs.
var ErrNoDOIs = errors.New("no valid DOIs found")

// ErrNoDOIColumn is returned when a CSV file lacks a "doi" column.
var ErrNoDOIColumn = errors.New(`csv file has no "doi" column`)

// resolver prefixes stripped during normalization.
var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

// Normalize trims an input DOI and strips resolver URL and "doi:" prefixes.
// It returns the empty string for blank input.
func Normalize(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range doiPrefixes {
		if len(doi) >= len(prefix) && strings.EqualFold(doi[:len(prefix)], prefix) {
			doi = doi[len(prefix):]
			break
		}
	}
	return strings.TrimSpace(doi)
}

// Load reads DOIs from path. Files ending in .csv are parsed as CSV and must
// carry a "doi" column (any position, case-insensitive); anything else is
// treated as plain text with one DOI per line. The result is normalized and
// deduplicated, keeping first-occurrence order.
func Load(path string) ([]string, error) {
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return loadCSV(path)
	}
	return loadText(path)
}

// ParseManual splits a comma-separated DOI list, normalizing and
// deduplicating like Load.
func ParseManual(input string) ([]string, error) {
	dois := dedupe(strings.Split(input, ","))
	if len(dois) == 0 {
		return nil, ErrNoDOIs
	}
	return dois, nil
}

func loadText(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading DOI file: %w", err)
	}

	dois := dedupe(strings.Split(string(data), "\n"))
	if len(dois) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoDOIs)
	}
	return dois, nil
}

func loadCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading DOI file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoDOIColumn)
	}

	col := -1
	for i, name := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(name), "doi") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoDOIColumn)
	}

	var raw []string
	for _, row := range rows[1:] {
		if col < len(row) {
			raw = append(raw, row[col])
		}
	}

	dois := dedupe(raw)
	if len(dois) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoDOIs)
	}
	return dois, nil
}

// dedupe normalizes every entry, drops blanks, and keeps the first
// occurrence of each DOI in input order.
func dedupe(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var dois []string
	for _, entry := range raw {
		doi := Normalize(entry)
		if doi == "" || seen[doi] {
			continue
		}
		seen[doi] = true
		dois = append(dois, doi)
	}
	return dois
}
