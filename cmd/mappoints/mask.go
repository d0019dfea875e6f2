package main

import (
	"fmt"

	"github.com/lewtec/mappoints/internal/boundary"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// maskCmd represents the mask command
var maskCmd = &cobra.Command{
	Use:   "mask [boundary.json]",
	Short: "Write the boundary and the area outside of it as GeoJSON",
	Long: `Read a boundary in ESRI rings JSON format and write a GeoJSON feature
collection with the boundary polygon and the world rectangle minus the boundary.
Only the first ring of the first feature is used.

Example:
  mappoints mask stadtgrenze.json -o mask.geojson`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.BoundaryPath()
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("no boundary given, pass a file or set --boundary")
		}

		b, err := boundary.LoadBoundary(path)
		if err != nil {
			return err
		}
		west, south, east, north := b.Bounds()
		log.Info().
			Str("boundary", path).
			Floats64("bounds", []float64{west, south, east, north}).
			Msg("boundary loaded")

		output, _ := cmd.Flags().GetString("output")
		if output == "" || output == "-" {
			fc, err := boundary.MaskFeatureCollection(b)
			if err != nil {
				return err
			}
			data, err := fc.MarshalJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		}
		if err := boundary.WriteMask(b, output); err != nil {
			return fmt.Errorf("while writing mask: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Mask written to %s\n", output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(maskCmd)

	maskCmd.Flags().StringP("output", "o", "", "Output file, stdout when empty")
}
