// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/citation-engine/internal/httputil"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// openAlexAPIBase is the OpenAlex works endpoint. Declared as a var so tests
// can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works/"

// OpenAlex queries the OpenAlex API. A mailto query parameter routes
// requests through the polite pool with higher rate limits.
type OpenAlex struct {
	Client *http.Client
	Config types.SourceConfig
}

// Name returns the backend identifier.
func (s *OpenAlex) Name() string { return "openalex" }

// openAlexWork captures the one field we need from a work record.
type openAlexWork struct {
	CitedByCount int `json:"cited_by_count"`
}

// FetchCount returns the cited_by_count for doi. OpenAlex accepts bare DOIs
// through its external-ID lookup form, works/doi:{doi}.
func (s *OpenAlex) FetchCount(ctx context.Context, doi string) (int, error) {
	apiURL := openAlexAPIBase + "doi:" + doi
	if s.Config.Mailto != "" {
		apiURL += "?mailto=" + url.QueryEscape(s.Config.Mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating OpenAlex request: %w", err)
	}
	req.Header.Set("User-Agent", s.Config.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return 0, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return 0, nil
	default:
		return 0, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var work openAlexWork
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return 0, fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return work.CitedByCount, nil
}
