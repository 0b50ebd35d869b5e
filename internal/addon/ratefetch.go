package addon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// DefaultRateURL serves ECB-derived daily rates keyed by base currency.
const DefaultRateURL = "https://open.er-api.com/v6/latest/{base}"

// HTTPRateFetcher pulls a rate set over HTTP. The URL template's {base}
// placeholder is replaced with the base currency code.
type HTTPRateFetcher struct {
	url  string
	http *http.Client
}

// NewHTTPRateFetcher builds a fetcher; an empty url means DefaultRateURL.
func NewHTTPRateFetcher(url string, client *http.Client) *HTTPRateFetcher {
	if url == "" {
		url = DefaultRateURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPRateFetcher{url: url, http: client}
}

type rateResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

func (f *HTTPRateFetcher) Fetch(ctx context.Context, base string) (map[string]float64, error) {
	url := strings.ReplaceAll(f.url, "{base}", base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("rates: http %d for %s", resp.StatusCode, base)
	}
	var out rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Rates) == 0 {
		return nil, fmt.Errorf("rates: empty rate set for %s", base)
	}
	return out.Rates, nil
}
