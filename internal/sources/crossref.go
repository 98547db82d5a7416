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

// crossrefAPIBase is the CrossRef works endpoint. Declared as a var so tests
// can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works/"

// CrossRef queries the CrossRef REST API. CrossRef asks polite clients to
// identify themselves with a mailto in the User-Agent.
type CrossRef struct {
	Client *http.Client
	Config types.SourceConfig
}

// Name returns the backend identifier.
func (s *CrossRef) Name() string { return "crossref" }

// crossrefResponse captures the one field we need from a works record.
type crossrefResponse struct {
	Message struct {
		IsReferencedByCount int `json:"is-referenced-by-count"`
	} `json:"message"`
}

// FetchCount returns the is-referenced-by-count for doi.
func (s *CrossRef) FetchCount(ctx context.Context, doi string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, crossrefAPIBase+doi, nil)
	if err != nil {
		return 0, fmt.Errorf("creating CrossRef request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent())

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return 0, fmt.Errorf("CrossRef API request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return 0, nil
	default:
		return 0, fmt.Errorf("CrossRef API returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return 0, fmt.Errorf("parsing CrossRef response: %w", err)
	}
	return cr.Message.IsReferencedByCount, nil
}

func (s *CrossRef) userAgent() string {
	ua := s.Config.UserAgent
	if s.Config.Mailto != "" {
		ua += " (mailto:" + s.Config.Mailto + ")"
	}
	return ua
}
