package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openharvest/harvester/internal/fetch"
	"github.com/openharvest/harvester/internal/logging"
	"github.com/openharvest/harvester/internal/pipeline"
	"github.com/openharvest/harvester/internal/sitemap"
	"github.com/openharvest/harvester/internal/spider"
)

// newHarvestCmd creates the 'harvest' subcommand, the full two-source
// ingestion pipeline.
func newHarvestCmd() *cobra.Command {
	var (
		output    string
		apiLinks  string
		keywords  string
		itemLimit int
		pageLimit int
		startID   int
		keepEmpty bool
	)

	cmd := &cobra.Command{
		Use:   "harvest <sitemap-url>",
		Short: "Runs the full catalogue + crawl ingestion pipeline",
		Long: `Collects and normalizes dataset metadata from every catalogue URL in the
api-links file, then crawls the data-looking pages behind the given sitemap,
continuing the identifier sequence across both stages, and writes the merged
collection as one JSON array.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarvest(cmd, args[0], harvestFlags{
				output:    output,
				apiLinks:  apiLinks,
				keywords:  keywords,
				itemLimit: itemLimit,
				pageLimit: pageLimit,
				startID:   startID,
				keepEmpty: keepEmpty,
			})
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "final merged JSON filename (default datasets.json)")
	cmd.Flags().StringVar(&apiLinks, "api-links", "", "path to a file of catalogue package_search URLs (default api_links.txt)")
	cmd.Flags().StringVar(&keywords, "keywords", "", "comma-separated keyword overrides for sitemap filtering")
	cmd.Flags().IntVar(&itemLimit, "item-limit", 0, "stop the crawl after N kept records (0 = no limit)")
	cmd.Flags().IntVar(&pageLimit, "page-limit", 0, "stop the crawl after N page fetches (0 = no limit)")
	cmd.Flags().IntVar(&startID, "start-id", 1, "starting identifier value for records")
	cmd.Flags().BoolVar(&keepEmpty, "keep-empty", false, "keep records with empty data_types")
	return cmd
}

type harvestFlags struct {
	output    string
	apiLinks  string
	keywords  string
	itemLimit int
	pageLimit int
	startID   int
	keepEmpty bool
}

func runHarvest(cmd *cobra.Command, sitemapURL string, flags harvestFlags) error {
	spiderCfg, err := spider.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load spider config: %w", err)
	}
	if flags.itemLimit > 0 {
		spiderCfg.ItemLimit = flags.itemLimit
	}
	if flags.pageLimit > 0 {
		spiderCfg.PageLimit = flags.pageLimit
	}
	if flags.keepEmpty {
		spiderCfg.KeepEmptyTypes = true
	}

	fetcher := fetch.NewClient(viper.GetString("catalogue.user_agent"), catalogueTimeout())
	p := pipeline.New(
		newCatalogueClient(),
		sitemap.NewCollector(fetcher, logging.L),
		spider.New(spiderCfg, logging.L),
		logging.L,
	)

	output := flags.output
	if output == "" {
		output = viper.GetString("harvest.output")
	}
	apiLinks := flags.apiLinks
	if apiLinks == "" {
		apiLinks = viper.GetString("harvest.api_links")
	}

	return p.Run(cmd.Context(), pipeline.Options{
		SitemapURL:   sitemapURL,
		APILinksPath: apiLinks,
		OutputPath:   output,
		Keywords:     sitemap.ParseKeywordList(flags.keywords),
		StartID:      flags.startID,
		KeepEmpty:    flags.keepEmpty,
	})
}
