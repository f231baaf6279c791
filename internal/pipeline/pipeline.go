// Package pipeline orchestrates the catalogue and crawl stages so record
// identifiers never collide, then writes the merged collection exactly
// once.
package pipeline

import (
	"context"
	"errors"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openharvest/harvester/internal/ckan"
	"github.com/openharvest/harvester/internal/record"
	"github.com/openharvest/harvester/internal/sitemap"
	"github.com/openharvest/harvester/internal/spider"
)

// DefaultOutput is used when no output path is supplied.
const DefaultOutput = "datasets.json"

// Options parameterizes one pipeline run.
type Options struct {
	SitemapURL   string
	APILinksPath string
	OutputPath   string
	Keywords     []string
	StartID      int
	KeepEmpty    bool
}

// Pipeline wires the two ingestion stages together.
type Pipeline struct {
	catalogue *ckan.Client
	collector *sitemap.Collector
	spider    *spider.Spider
	logger    *zap.Logger
}

// New builds a Pipeline.
func New(catalogue *ckan.Client, collector *sitemap.Collector, sp *spider.Spider, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		catalogue: catalogue,
		collector: collector,
		spider:    sp,
		logger:    logger,
	}
}

// Run executes the full ingestion: catalogue sources first (ids from
// opts.StartID), then sitemap collection, keyword filtering, and the
// crawl stage seeded with the catalogue's next unused identifier. The
// output is the catalogue records followed by the crawl records, each
// group in keep order; downstream consumers rely on catalogue entries
// preceding crawled ones. The collection is serialized once, after both
// stages have fully finished.
func (p *Pipeline) Run(ctx context.Context, opts Options) error {
	log := p.logger.With(zap.String("run_id", uuid.NewString()))
	counter := record.NewCounter(opts.StartID)

	catalogueRecords := p.runCatalogueStage(ctx, opts, counter)
	log.Info("Catalogue stage finished",
		zap.Int("kept", len(catalogueRecords)),
		zap.Int("next_id", counter.Value()),
	)

	filtered, err := p.collectTargets(ctx, opts, log)
	if err != nil {
		return err
	}

	var crawlRecords []record.Dataset
	if len(filtered) == 0 {
		log.Info("No matching URLs found after filtering; writing catalogue records only")
	} else {
		crawlRecords = p.spider.Run(ctx, filtered, counter)
		log.Info("Crawl stage finished", zap.Int("kept", len(crawlRecords)))
	}

	combined := make([]record.Dataset, 0, len(catalogueRecords)+len(crawlRecords))
	combined = append(combined, catalogueRecords...)
	combined = append(combined, crawlRecords...)

	output := opts.OutputPath
	if output == "" {
		output = DefaultOutput
	}
	if err := WriteCollection(output, combined); err != nil {
		return err
	}
	log.Info("Wrote merged collection",
		zap.Int("records", len(combined)),
		zap.String("path", output),
	)
	return nil
}

// runCatalogueStage reads the api-links file and collects every listed
// source. A missing links file just skips the stage, matching the
// standalone converter's behavior.
func (p *Pipeline) runCatalogueStage(ctx context.Context, opts Options, counter *record.Counter) []record.Dataset {
	if opts.APILinksPath == "" {
		return nil
	}
	sources, err := ckan.ReadAPILinks(opts.APILinksPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			p.logger.Info("API links file not found; skipping catalogue stage",
				zap.String("path", opts.APILinksPath),
			)
			return nil
		}
		p.logger.Warn("Failed to read API links; skipping catalogue stage",
			zap.String("path", opts.APILinksPath),
			zap.Error(err),
		)
		return nil
	}
	if len(sources) == 0 {
		p.logger.Info("API links file is empty; skipping catalogue stage",
			zap.String("path", opts.APILinksPath),
		)
		return nil
	}
	return p.catalogue.CollectAll(ctx, sources, counter, opts.KeepEmpty)
}

// collectTargets flattens the site's URL index and narrows it to
// data-looking paths. A root index failure is fatal: with no URL source
// there is nothing left to crawl.
func (p *Pipeline) collectTargets(ctx context.Context, opts Options, log *zap.Logger) ([]string, error) {
	urls, err := p.collector.Collect(ctx, opts.SitemapURL)
	if err != nil {
		return nil, err
	}
	urls = sitemap.Dedupe(urls)

	keywords := opts.Keywords
	if len(keywords) == 0 {
		keywords = sitemap.DefaultKeywords
	}
	filtered := sitemap.FilterByKeywords(urls, keywords)
	log.Info("Filtered sitemap URLs",
		zap.Int("collected", len(urls)),
		zap.Int("matched", len(filtered)),
	)
	return filtered, nil
}
