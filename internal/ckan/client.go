package ckan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/openharvest/harvester/internal/fetch"
)

// Pagination fallbacks when the search URL does not carry rows/start.
const (
	defaultRows  = 100
	defaultStart = 0
)

// Client walks the package_search pagination protocol.
type Client struct {
	fetcher *fetch.Client
	logger  *zap.Logger
}

// NewClient builds a catalogue client over the shared fetch helper.
func NewClient(fetcher *fetch.Client, logger *zap.Logger) *Client {
	return &Client{fetcher: fetcher, logger: logger}
}

// IsHTTP reports whether input names an http(s) URL rather than a local
// path or stdin.
func IsHTTP(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// LoadAny reads raw bytes from an http(s) URL, a local file path, or "-"
// for standard input.
func (c *Client) LoadAny(ctx context.Context, input string) ([]byte, error) {
	switch {
	case input == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	case IsHTTP(input):
		data, _, err := c.fetcher.Get(ctx, input)
		return data, err
	default:
		data, err := os.ReadFile(input)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", input, err)
		}
		return data, nil
	}
}

// ParsePage validates and decodes one package_search response. The source
// string only labels errors. A nil count means the endpoint did not report
// a total, so pagination cannot continue past this page.
func ParsePage(source string, data []byte) ([]Package, *int, error) {
	var envelope searchResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, nil, &ProtocolError{Source: source, Reason: "not a package_search response"}
	}
	if envelope.Result == nil || envelope.Result.Results == nil {
		return nil, nil, &ProtocolError{Source: source, Reason: "not a package_search response"}
	}
	if envelope.Success != nil && !*envelope.Success {
		return nil, nil, &ProtocolError{Source: source, Reason: "API reported success=false"}
	}
	return *envelope.Result.Results, envelope.Result.Count, nil
}

// PackagesFromDocument decodes CLI-provided input that may be either a
// full package_search response or a bare JSON list of packages. Anything
// else is a *ValidationError.
func PackagesFromDocument(source string, data []byte) ([]Package, error) {
	pkgs, _, err := ParsePage(source, data)
	if err == nil {
		return pkgs, nil
	}
	var list []Package
	if listErr := json.Unmarshal(data, &list); listErr == nil {
		return list, nil
	}
	return nil, &ValidationError{Source: source}
}

// FetchPage retrieves and validates a single result page.
func (c *Client) FetchPage(ctx context.Context, pageURL string) ([]Package, *int, error) {
	data, _, err := c.fetcher.Get(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}
	return ParsePage(pageURL, data)
}

// FetchAllPages returns the complete, order-preserving concatenation of
// every result page behind rawURL. If the first page reports no total
// count the protocol does not support continuation and only that page is
// returned. Pagination also stops when a fetched page comes back empty,
// guarding against totals that are never reached.
func (c *Client) FetchAllPages(ctx context.Context, rawURL string) ([]Package, error) {
	results, total, err := c.FetchPage(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if total == nil {
		return results, nil
	}

	rows, start := pageParams(rawURL)
	got := len(results)
	for got < *total {
		start += rows
		pageURL, err := withStart(rawURL, start)
		if err != nil {
			return nil, err
		}
		page, _, err := c.FetchPage(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			c.logger.Warn("Catalogue returned a short page; stopping pagination",
				zap.String("url", pageURL),
				zap.Int("accumulated", got),
				zap.Int("reported_total", *total),
			)
			break
		}
		results = append(results, page...)
		got += len(page)
	}
	return results, nil
}

// pageParams extracts the rows/start pagination parameters from rawURL,
// falling back to the protocol defaults.
func pageParams(rawURL string) (rows, start int) {
	rows, start = defaultRows, defaultStart
	u, err := url.Parse(rawURL)
	if err != nil {
		return rows, start
	}
	q := u.Query()
	if v, err := strconv.Atoi(q.Get("rows")); err == nil && v > 0 {
		rows = v
	}
	if v, err := strconv.Atoi(q.Get("start")); err == nil && v >= 0 {
		start = v
	}
	return rows, start
}

// withStart returns rawURL with its start query parameter replaced.
func withStart(rawURL string, start int) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	q := u.Query()
	q.Set("start", strconv.Itoa(start))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
