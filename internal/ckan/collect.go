package ckan

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/openharvest/harvester/internal/record"
)

// CollectAll processes catalogue source inputs sequentially, in input
// order, normalizing each package and assigning identifiers from counter
// at keep time. A protocol or transport failure on one source is logged
// and skipped so sibling sources still contribute. Cross-source ordering
// stays deterministic because identifier assignment depends on it.
func (c *Client) CollectAll(ctx context.Context, sources []string, counter *record.Counter, keepEmpty bool) []record.Dataset {
	out := make([]record.Dataset, 0)
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			c.logger.Warn("Catalogue stage canceled", zap.Error(err))
			break
		}
		pkgs, err := c.loadPackages(ctx, source)
		if err != nil {
			c.logger.Warn("Skipping catalogue source",
				zap.String("source", source),
				zap.Error(err),
			)
			continue
		}
		for _, pkg := range pkgs {
			rec, ok := Normalize(pkg, keepEmpty)
			if !ok {
				continue
			}
			rec.ID = counter.Next()
			out = append(out, rec)
		}
	}
	return out
}

// loadPackages resolves one source input: http(s) URLs are paged to
// completion, anything else is loaded once and may be either a full
// response envelope or a bare package list.
func (c *Client) loadPackages(ctx context.Context, source string) ([]Package, error) {
	if IsHTTP(source) {
		return c.FetchAllPages(ctx, source)
	}
	data, err := c.LoadAny(ctx, source)
	if err != nil {
		return nil, err
	}
	return PackagesFromDocument(source, data)
}

// ReadAPILinks reads catalogue source URLs from path, one per line,
// skipping blanks and #-comments.
func ReadAPILinks(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open api links %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	var links []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		links = append(links, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read api links %s: %w", path, err)
	}
	return links, nil
}
