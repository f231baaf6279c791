package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openharvest/harvester/internal/fetch"
	"github.com/openharvest/harvester/internal/logging"
	"github.com/openharvest/harvester/internal/sitemap"
)

// newSitemapCmd creates the 'sitemap' subcommand, which flattens a site's
// URL index and keeps only data-looking paths.
func newSitemapCmd() *cobra.Command {
	var (
		output   string
		limit    int
		keywords string
	)

	cmd := &cobra.Command{
		Use:   "sitemap <url>",
		Short: "Filters sitemap URLs to those with data-related path keywords",
		Long: `Fetches a sitemap.xml (or .gz) document, flattens a one-level index of
indexes, deduplicates the URLs, and prints those whose path contains a
data-related keyword.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSitemap(cmd, args[0], output, limit, keywords)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write results to a file instead of stdout")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of URLs to output (0 = no limit)")
	cmd.Flags().StringVarP(&keywords, "keywords", "k", "", "comma-separated keywords to match in paths (default built-in list)")
	return cmd
}

func runSitemap(cmd *cobra.Command, rawURL, output string, limit int, keywordsFlag string) error {
	fetcher := fetch.NewClient(viper.GetString("catalogue.user_agent"), catalogueTimeout())
	collector := sitemap.NewCollector(fetcher, logging.L)

	urls, err := collector.Collect(cmd.Context(), rawURL)
	if err != nil {
		return err
	}
	urls = sitemap.Dedupe(urls)

	keywords := sitemap.ParseKeywordList(keywordsFlag)
	if keywords == nil {
		keywords = sitemap.DefaultKeywords
	}
	filtered := sitemap.FilterByKeywords(urls, keywords)
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	text := strings.Join(filtered, "\n")
	if len(filtered) > 0 {
		text += "\n"
	}
	if output == "" {
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	}
	if err := os.WriteFile(output, []byte(text), 0o600); err != nil {
		return fmt.Errorf("write url list %s: %w", output, err)
	}
	return nil
}
