// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources queries external citation databases for per-DOI citation
// counts. Each backend (CrossRef, OpenAlex, Dimensions) implements the
// Source interface.
//
// All backends share the same count semantics: HTTP 200 yields the reported
// count, HTTP 404 yields 0 (the database knows the DOI space and reports the
// work as absent), and any other status, transport failure, or undecodable
// body yields an error. The harvester records errors as unavailable counts;
// a source error never propagates past the record it belongs to.
package sources

import (
	"context"
	"net/http"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Source fetches the citation count for a single DOI from one database.
type Source interface {
	Name() string
	FetchCount(ctx context.Context, doi string) (int, error)
}

// Default returns the three production backends in harvest order:
// CrossRef, OpenAlex, Dimensions.
func Default(client *http.Client, cfg types.SourceConfig) []Source {
	return []Source{
		&CrossRef{Client: client, Config: cfg},
		&OpenAlex{Client: client, Config: cfg},
		&Dimensions{Client: client, Config: cfg},
	}
}
