package addon

import (
	"net/url"
	"strings"
)

// WebSearchSpec is one configured search engine: a keyword plus a URL
// template with a {query} placeholder.
type WebSearchSpec struct {
	Name    string
	Keyword string
	URL     string
	Icon    string
}

// WebSearches matches keyword-prefixed inputs and turns the rest of the
// input into a browser-openable search URL.
type WebSearches struct {
	specs []WebSearchSpec
}

// NewWebSearches builds the addon over the configured engines.
func NewWebSearches(specs []WebSearchSpec) *WebSearches {
	return &WebSearches{specs: specs}
}

// Match finds the engine whose keyword is the first token of input. A
// keyword with no query declines: an empty search is never useful.
func (w *WebSearches) Match(input string) (Item, bool) {
	keyword, query, _ := strings.Cut(strings.TrimSpace(input), " ")
	query = strings.TrimSpace(query)
	if keyword == "" || query == "" {
		return Item{}, false
	}
	for _, spec := range w.specs {
		if spec.Keyword != keyword {
			continue
		}
		target := strings.ReplaceAll(spec.URL, "{query}", encodeQuery(query))
		return Item{
			Title:    spec.Name + ": " + query,
			Subtitle: target,
			Value:    target,
			Icon:     spec.Icon,
			Action:   Action{Kind: ActionOpenURL, URL: target},
		}, true
	}
	return Item{}, false
}

// encodeQuery percent-encodes a query for embedding in a URL. Spaces
// become %20, not '+', so the result is valid in any URL component.
func encodeQuery(q string) string {
	return strings.ReplaceAll(url.QueryEscape(q), "+", "%20")
}
