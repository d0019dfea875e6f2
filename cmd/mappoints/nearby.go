package main

import (
	"fmt"

	"github.com/lewtec/mappoints/internal/boundary"
	"github.com/lewtec/mappoints/internal/domain"
	"github.com/lewtec/mappoints/internal/spatial"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/spf13/cobra"
)

// nearbyCmd represents the nearby command
var nearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "List the points closest to a location or inside the boundary",
	Long: `List the k points closest to --lat/--lon, or with --within-boundary every
point inside the configured boundary polygon.

Example:
  mappoints nearby --lat 50.94 --lon 6.96 -k 3
  mappoints nearby --within-boundary -b stadtgrenze.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		within, _ := flags.GetBool("within-boundary")
		if !within && (!flags.Changed("lat") || !flags.Changed("lon")) {
			return fmt.Errorf("either --lat and --lon or --within-boundary is required")
		}

		store, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		points, err := store.ListPoints(cmd.Context())
		if err != nil {
			return err
		}
		index := spatial.New(points)

		var found []*domain.Point
		if within {
			if cfg.BoundaryPath() == "" {
				return fmt.Errorf("--within-boundary needs a boundary, set --boundary")
			}
			b, err := boundary.LoadBoundary(cfg.BoundaryPath())
			if err != nil {
				return err
			}
			found = []*domain.Point{}
			for _, point := range index.InBounds(b.Bound()) {
				if planar.PolygonContains(b.Polygon, orb.Point{point.Longitude, point.Latitude}) {
					found = append(found, point)
				}
			}
		} else {
			latitude, _ := flags.GetFloat64("lat")
			longitude, _ := flags.GetFloat64("lon")
			k, _ := flags.GetInt("limit")
			found = index.Nearest(latitude, longitude, k)
		}

		printPoints(cmd.OutOrStdout(), found)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nearbyCmd)

	nearbyCmd.Flags().Float64("lat", 0, "Latitude in degrees")
	nearbyCmd.Flags().Float64("lon", 0, "Longitude in degrees")
	nearbyCmd.Flags().IntP("limit", "k", 5, "Number of points to list")
	nearbyCmd.Flags().Bool("within-boundary", false, "List the points inside the boundary instead")
}
