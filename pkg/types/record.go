// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strconv"
	"time"
)

// Count holds a citation count from a single source. Valid is false when the
// source could not be queried (network error, bad payload, non-404 HTTP
// error); a missing count is distinct from a zero count, which means the
// source knows the work and reports no citations.
type Count struct {
	Value int  `json:"value" yaml:"value"`
	Valid bool `json:"valid" yaml:"valid"`
}

// CountOf returns a valid Count holding v.
func CountOf(v int) Count {
	return Count{Value: v, Valid: true}
}

// String renders the count for CSV output: the decimal value, or the empty
// string when the count is unavailable.
func (c Count) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.Itoa(c.Value)
}

// ParseCount is the inverse of String: an empty field is an unavailable count.
func ParseCount(s string) (Count, error) {
	if s == "" {
		return Count{}, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return Count{}, err
	}
	return CountOf(v), nil
}

// CitationRecord holds the merged citation counts for one DOI.
type CitationRecord struct {
	// DOI is the normalized identifier (no doi: or resolver prefix).
	DOI string `json:"doi" yaml:"doi"`

	// CrossRef is the is-referenced-by-count reported by CrossRef.
	CrossRef Count `json:"crossref_citations" yaml:"crossref_citations"`

	// OpenAlex is the cited_by_count reported by OpenAlex.
	OpenAlex Count `json:"openalex_citations" yaml:"openalex_citations"`

	// Dimensions is the times_cited reported by the Dimensions Metrics API.
	Dimensions Count `json:"dimensions_citations" yaml:"dimensions_citations"`

	// MaxCitations is the maximum of the available counts, 0 when none are.
	MaxCitations int `json:"max_citations" yaml:"max_citations"`

	// ProcessedAt is when the record was finalized.
	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`
}

// MaxOf returns the maximum of the valid counts, treating unavailable
// sources as 0. All-unavailable yields 0.
func MaxOf(counts ...Count) int {
	max := 0
	for _, c := range counts {
		if c.Valid && c.Value > max {
			max = c.Value
		}
	}
	return max
}
