package main

import (
	"fmt"
	"text/tabwriter"

	gojson "github.com/goccy/go-json"
	"github.com/hupe1980/geotile"
	"github.com/hupe1980/geotile/model"
	"github.com/spf13/cobra"
)

func newTilesCmd(a *app) *cobra.Command {
	var (
		input       string
		topLeft     string
		bottomRight string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "tiles",
		Short: "List the tiles of a divided dataset",
		Long:  "List every tile of a divided dataset, or only those intersecting --top-left/--bottom-right.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if (topLeft == "") != (bottomRight == "") {
				return fmt.Errorf("--top-left and --bottom-right must be given together")
			}

			if err := a.checkInput(input); err != nil {
				return err
			}
			store, err := a.openStore(ctx, input)
			if err != nil {
				return err
			}
			idx, m, err := geotile.NewExtractor(store, geotile.WithLogger(a.logger)).OpenIndex(ctx)
			if err != nil {
				return fmt.Errorf("open index in %s: %w", input, err)
			}

			tiles := idx.Tiles()
			if topLeft != "" {
				query, err := parseBox(topLeft, bottomRight)
				if err != nil {
					return err
				}
				tiles = idx.FindIntersecting(query)
			}

			if asJSON {
				if tiles == nil {
					tiles = []model.Tile{}
				}
				data, err := gojson.MarshalIndent(tiles, "", "  ")
				if err != nil {
					return err
				}
				a.printf("%s\n", data)
				return nil
			}

			if m.Legacy {
				a.printf("Legacy dataset %s: %d tiles\n", m.Location, idx.Len())
			} else {
				a.printf("Dataset %s (manifest %d): %d tiles, %d buildings\n", m.Location, m.ID, idx.Len(), idx.TotalRecords())
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tRECORDS\tBOUNDS\tLOCATION")
			for _, t := range tiles {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", t.ID, t.RecordCount, t.Bounds, t.StorageLocation)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Directory (or key prefix) of the divided dataset")
	cmd.Flags().StringVar(&topLeft, "top-left", "", "Top-left corner as lat,lon")
	cmd.Flags().StringVar(&bottomRight, "bottom-right", "", "Bottom-right corner as lat,lon")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tiles as JSON")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
