package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/hupe1980/geotile"
	"github.com/hupe1980/geotile/codec"
	"github.com/hupe1980/geotile/model"
	"github.com/hupe1980/geotile/source"
	"github.com/spf13/cobra"
)

func newDivideCmd(a *app) *cobra.Command {
	var (
		input    string
		output   string
		location string
	)

	cmd := &cobra.Command{
		Use:   "divide",
		Short: "Divide a GeoJSON file into tiles",
		Long: `Divide a local GeoJSON file (FeatureCollection or line-delimited features,
optionally gzip'd) into tiles of at most --max-records buildings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if location == "" {
				location = datasetName(input)
			}
			batch, err := source.ReadFile(ctx, input, codec.Default)
			if err != nil {
				return err
			}
			return a.divide(ctx, batch, location, output)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Input GeoJSON file")
	cmd.Flags().StringVar(&output, "output", "output", "Output directory (or key prefix for remote stores)")
	cmd.Flags().StringVar(&location, "location", "", "Dataset name (default: input file name)")
	cmd.Flags().IntVar(&a.cfg.MaxRecords, "max-records", DefaultMaxRecords, "Maximum buildings per tile")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func (a *app) divide(ctx context.Context, batch *model.Batch, location, output string) error {
	store, err := a.openStore(ctx, output)
	if err != nil {
		return err
	}
	opts, err := a.options(location)
	if err != nil {
		return err
	}

	idx, report, err := geotile.NewPartitioner(store, opts...).Partition(ctx, batch, a.cfg.MaxRecords)
	if err != nil {
		return err
	}

	a.printf("Divided %d buildings into %d tiles in %s.\n", idx.TotalRecords(), idx.Len(), output)
	if report.Skipped > 0 {
		a.printf("Skipped %d buildings with invalid geometry.\n", report.Skipped)
	}
	return nil
}

// datasetName derives a dataset name from a file path: "data/Seattle.geojson.gz" -> "Seattle".
func datasetName(path string) string {
	name := filepath.Base(path)
	for _, ext := range []string{".gz", ".geojsonl", ".geojson", ".jsonl", ".json"} {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}
