package sitemap

import (
	"net/url"
	"strings"
)

// DefaultKeywords are path substrings that commonly indicate data
// endpoints or downloadable resources.
var DefaultKeywords = []string{
	// API / data endpoints
	"api", "apis", "graphql", "rest", "odata",
	// data nouns
	"data", "dataset", "datasets", "resources", "records", "entries",
	"feed", "stream", "datastore",
	// reporting / analytics
	"stats", "statistics", "report", "reports", "analytics", "metrics",
	// gov/open data
	"opendata", "catalog", "downloads", "ckan",
	// file-ish hints
	"json", "xml", "csv", "rdf", "geojson", "xlsx",
}

// FilterByKeywords keeps URLs whose path component contains any keyword
// as a case-insensitive substring. Scheme, host, and query are ignored,
// order is preserved, and each URL gets a single pass/fail test.
func FilterByKeywords(urls, keywords []string) []string {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}

	out := make([]string, 0, len(urls))
	for _, raw := range urls {
		path := ""
		if u, err := url.Parse(raw); err == nil {
			path = strings.ToLower(u.Path)
		}
		for _, kw := range lowered {
			if strings.Contains(path, kw) {
				out = append(out, raw)
				break
			}
		}
	}
	return out
}

// ParseKeywordList splits a comma-separated CLI override into keywords,
// dropping empties. A nil result means use the default list.
func ParseKeywordList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
