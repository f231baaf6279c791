// Package sitemap collects leaf URLs from a site's sitemap index and
// narrows them to paths that plausibly host data resources.
package sitemap

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/antchfx/xmlquery"
	"go.uber.org/zap"

	"github.com/openharvest/harvester/internal/fetch"
)

// ParseError reports a sitemap document that could not be parsed as XML.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse sitemap %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Collector fetches and flattens sitemap documents.
type Collector struct {
	fetcher *fetch.Client
	logger  *zap.Logger
}

// NewCollector builds a Collector over the shared fetch helper.
func NewCollector(fetcher *fetch.Client, logger *zap.Logger) *Collector {
	return &Collector{fetcher: fetcher, logger: logger}
}

// Collect returns every leaf document URL referenced by the index at
// rawURL. A flat urlset yields its loc entries directly. An
// index-of-indexes is descended exactly one level: each child index is
// fetched and its leaf entries flattened, and deeper nesting is
// deliberately not followed, bounding the fan-out. Child failures are
// skipped; a malformed root document is fatal.
func (c *Collector) Collect(ctx context.Context, rawURL string) ([]string, error) {
	doc, err := c.fetchDocument(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	urls := locValues(doc, "//url/loc")
	if len(urls) > 0 {
		return urls, nil
	}

	for _, child := range locValues(doc, "//sitemap/loc") {
		leaves, err := c.collectLeaves(ctx, child)
		if err != nil {
			c.logger.Warn("Skipping child sitemap",
				zap.String("url", child),
				zap.Error(err),
			)
			continue
		}
		urls = append(urls, leaves...)
	}
	return urls, nil
}

// collectLeaves reads a child index's url/loc entries only. It never
// follows nested sitemap references, which is what enforces the one-level
// recursion bound.
func (c *Collector) collectLeaves(ctx context.Context, rawURL string) ([]string, error) {
	doc, err := c.fetchDocument(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return locValues(doc, "//url/loc"), nil
}

func (c *Collector) fetchDocument(ctx context.Context, rawURL string) (*xmlquery.Node, error) {
	body, header, err := c.fetcher.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	body = maybeGunzip(rawURL, header, body)
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{URL: rawURL, Err: err}
	}
	return doc, nil
}

func locValues(doc *xmlquery.Node, expr string) []string {
	var out []string
	for _, node := range xmlquery.Find(doc, expr) {
		if loc := strings.TrimSpace(node.InnerText()); loc != "" {
			out = append(out, loc)
		}
	}
	return out
}

// maybeGunzip transparently decompresses a body delivered as a .gz file
// or with a gzip content encoding. Bodies that turn out not to be gzipped
// are returned unchanged.
func maybeGunzip(rawURL string, header http.Header, body []byte) []byte {
	if !looksGzipped(rawURL, header) {
		return body
	}
	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return body
	}
	defer zr.Close() //nolint:errcheck // fully drained below
	out, err := io.ReadAll(zr)
	if err != nil {
		return body
	}
	return out
}

func looksGzipped(rawURL string, header http.Header) bool {
	if strings.Contains(strings.ToLower(header.Get("Content-Encoding")), "gzip") {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".gz")
}

// Dedupe removes duplicate URLs while preserving first-seen order.
func Dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
