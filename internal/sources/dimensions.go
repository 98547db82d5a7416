// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/citation-engine/internal/httputil"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// dimensionsAPIBase is the Dimensions Metrics endpoint. Declared as a var so
// tests can substitute an httptest server.
var dimensionsAPIBase = "https://metrics-api.dimensions.ai/doi/"

// Dimensions queries the free Dimensions Metrics API. The metrics endpoint
// needs no API key; its published rate limits vary, so pacing is left to the
// harvester's shared limiter like the other backends.
type Dimensions struct {
	Client *http.Client
	Config types.SourceConfig
}

// Name returns the backend identifier.
func (s *Dimensions) Name() string { return "dimensions" }

// dimensionsResponse captures the one field we need from a metrics record.
type dimensionsResponse struct {
	TimesCited int `json:"times_cited"`
}

// FetchCount returns the times_cited for doi.
func (s *Dimensions) FetchCount(ctx context.Context, doi string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dimensionsAPIBase+doi, nil)
	if err != nil {
		return 0, fmt.Errorf("creating Dimensions request: %w", err)
	}
	req.Header.Set("User-Agent", s.Config.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return 0, fmt.Errorf("Dimensions API request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return 0, nil
	default:
		return 0, fmt.Errorf("Dimensions API returned HTTP %d", resp.StatusCode)
	}

	var dm dimensionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dm); err != nil {
		return 0, fmt.Errorf("parsing Dimensions response: %w", err)
	}
	return dm.TimesCited, nil
}
