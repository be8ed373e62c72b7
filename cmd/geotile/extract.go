package main

import (
	"fmt"

	"github.com/hupe1980/geotile"
	"github.com/hupe1980/geotile/codec"
	"github.com/hupe1980/geotile/feature"
	"github.com/hupe1980/geotile/geom"
	"github.com/spf13/cobra"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		input       string
		outputFile  string
		topLeft     string
		bottomRight string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the buildings inside a bounding box",
		Long: `Extract every building whose footprint intersects the box spanned by
--top-left and --bottom-right (lat,lon pairs) from a divided dataset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if err := a.checkInput(input); err != nil {
				return err
			}
			query, err := parseBox(topLeft, bottomRight)
			if err != nil {
				return err
			}
			outputFile, err = a.confirmOutput(outputFile, force)
			if err != nil {
				return err
			}

			store, err := a.openStore(ctx, input)
			if err != nil {
				return err
			}
			opts, err := a.options("")
			if err != nil {
				return err
			}
			ex := geotile.NewExtractor(store, opts...)

			idx, _, err := ex.OpenIndex(ctx)
			if err != nil {
				return fmt.Errorf("open index in %s: %w", input, err)
			}

			batch, report, err := ex.Extract(ctx, idx, query)
			if err != nil {
				return err
			}
			a.printf("Found %d potentially intersecting tiles.\n", report.Candidates)
			for _, f := range report.Failures {
				a.printf("Warning: tile %s skipped: %v\n", f.TileID, f.Err)
			}

			if batch.Len() == 0 {
				a.printf("No buildings found in the specified area.\n")
				return nil
			}
			if err := feature.WriteFile(ctx, outputFile, batch, codec.Default); err != nil {
				return err
			}
			a.printf("Extracted %d buildings to %s\n", batch.Len(), outputFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Directory (or key prefix) of the divided dataset")
	cmd.Flags().StringVar(&outputFile, "output-file", "cropped_file.geojson", "Output GeoJSON file")
	cmd.Flags().StringVar(&topLeft, "top-left", "", "Top-left corner as lat,lon")
	cmd.Flags().StringVar(&bottomRight, "bottom-right", "", "Bottom-right corner as lat,lon")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite the output file without asking")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("top-left")
	_ = cmd.MarkFlagRequired("bottom-right")

	return cmd
}

func parseBox(topLeft, bottomRight string) (geom.BoundingBox, error) {
	tl, err := geom.ParseLatLon(topLeft)
	if err != nil {
		return geom.BoundingBox{}, fmt.Errorf("--top-left: %w", err)
	}
	br, err := geom.ParseLatLon(bottomRight)
	if err != nil {
		return geom.BoundingBox{}, fmt.Errorf("--bottom-right: %w", err)
	}
	return geom.FromCorners(tl, br), nil
}
