package main

import (
	"context"
	"fmt"

	"github.com/hupe1980/geotile/codec"
	"github.com/hupe1980/geotile/feature"
	"github.com/hupe1980/geotile/model"
	"github.com/hupe1980/geotile/source"
	"github.com/spf13/cobra"
)

func newDownloadCmd(a *app) *cobra.Command {
	var (
		location string
		output   string
		divide   bool
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the footprints of a location",
		Long: `Download every dataset part of a location from the global building footprint dataset.

With --divide the buildings are partitioned into tiles right away, otherwise
they are written to <output>/<location>.geojson.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			opts := []source.Option{
				source.WithResourceController(a.resources),
				source.WithLogger(a.logger.Logger),
			}
			if a.cfg.LinksURL != "" {
				opts = append(opts, source.WithLinksURL(a.cfg.LinksURL))
			}

			a.printf("Downloading data for %s...\n", location)
			batch, report, err := source.NewDownloader(opts...).Download(ctx, location)
			if err != nil {
				return err
			}
			a.printf("Downloaded %d buildings from %d parts.\n", report.Records, report.Parts)
			if n := len(report.Failures); n > 0 {
				a.printf("Skipped %d of %d parts.\n", n, report.Parts)
			}

			if divide {
				return a.divide(ctx, batch, location, output)
			}
			return a.writeDataset(ctx, batch, location, output)
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "Location name as listed in the dataset links")
	cmd.Flags().StringVar(&output, "output", "output", "Output directory (or key prefix for remote stores)")
	cmd.Flags().BoolVar(&divide, "divide", false, "Divide into tiles immediately")
	cmd.Flags().IntVar(&a.cfg.MaxRecords, "max-records", DefaultMaxRecords, "Maximum buildings per tile")
	_ = cmd.MarkFlagRequired("location")

	return cmd
}

func (a *app) writeDataset(ctx context.Context, batch *model.Batch, location, output string) error {
	store, err := a.openStore(ctx, output)
	if err != nil {
		return err
	}
	data, err := feature.Encode(batch, codec.Default)
	if err != nil {
		return err
	}
	name := location + ".geojson"
	if err := store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	a.printf("Wrote %d buildings to %s.\n", batch.Len(), name)
	return nil
}
