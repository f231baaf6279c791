package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openharvest/harvester/internal/ckan"
	"github.com/openharvest/harvester/internal/logging"
	"github.com/openharvest/harvester/internal/pipeline"
	"github.com/openharvest/harvester/internal/record"
)

// newConvertCmd creates the 'convert' subcommand, the standalone
// catalogue-to-collection converter.
func newConvertCmd() *cobra.Command {
	var (
		output    string
		keepEmpty bool
		allPages  bool
		startID   int
	)

	cmd := &cobra.Command{
		Use:   "convert <input>",
		Short: "Converts CKAN package_search JSON into the canonical collection",
		Long: `Reads a CKAN package_search response from a URL, a local file path, or
'-' for standard input, normalizes each package into the canonical record
schema, and writes the kept records as a JSON array. With --all a URL input
is paged through to completion using its rows/start parameters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], output, keepEmpty, allPages, startID)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "ckan_output.json", "output JSON file")
	cmd.Flags().BoolVar(&keepEmpty, "keep-empty", false, "keep records with empty data_types")
	cmd.Flags().BoolVar(&allPages, "all", false, "page through all results for a URL input")
	cmd.Flags().IntVar(&startID, "start-id", 1, "starting identifier value for records")
	return cmd
}

func runConvert(cmd *cobra.Command, input, output string, keepEmpty, allPages bool, startID int) error {
	ctx := cmd.Context()
	client := newCatalogueClient()

	var (
		pkgs []ckan.Package
		err  error
	)
	switch {
	case ckan.IsHTTP(input) && allPages:
		pkgs, err = client.FetchAllPages(ctx, input)
	case ckan.IsHTTP(input):
		pkgs, _, err = client.FetchPage(ctx, input)
	default:
		var data []byte
		data, err = client.LoadAny(ctx, input)
		if err == nil {
			pkgs, err = ckan.PackagesFromDocument(input, data)
		}
	}
	if err != nil {
		return fmt.Errorf("load catalogue input: %w", err)
	}

	counter := record.NewCounter(startID)
	out := make([]record.Dataset, 0, len(pkgs))
	for _, pkg := range pkgs {
		rec, ok := ckan.Normalize(pkg, keepEmpty)
		if !ok {
			continue
		}
		rec.ID = counter.Next()
		out = append(out, rec)
	}

	if err := pipeline.WriteCollection(output, out); err != nil {
		return err
	}
	logging.L.Info("Wrote records",
		zap.Int("records", len(out)),
		zap.String("path", output),
	)
	return nil
}
