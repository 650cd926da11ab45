package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// FilterResult is returned to the caller as is.
type FilterResult struct {
	Count   int               `json:"count"`
	Entries []json.RawMessage `json:"entries"`
}

// PublicAPIClient reads the public API directory, a document of the form
// {"entries":[{"Category":"...", ...}, ...]}.
type PublicAPIClient struct {
	url  string
	http *http.Client
}

func NewPublicAPIClient(url string, httpClient *http.Client) *PublicAPIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &PublicAPIClient{url: url, http: httpClient}
}

// Filter fetches the directory and keeps the entries whose Category equals
// category, ignoring case. An empty category keeps everything. A negative
// limit means no limit. Entries are passed through without reshaping.
func (c *PublicAPIClient) Filter(ctx context.Context, category string, limit int) (*FilterResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, upstreamError("public api", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, upstreamError("public api", err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, upstreamError("public api", err)
	}

	var doc struct {
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, upstreamError("public api", err)
	}

	entries := make([]json.RawMessage, 0, len(doc.Entries))
	for _, raw := range doc.Entries {
		if limit >= 0 && len(entries) >= limit {
			break
		}
		if category != "" {
			var e struct {
				Category string `json:"Category"`
			}
			if err := json.Unmarshal(raw, &e); err != nil {
				continue
			}
			if !strings.EqualFold(e.Category, category) {
				continue
			}
		}
		entries = append(entries, raw)
	}

	return &FilterResult{Count: len(entries), Entries: entries}, nil
}
