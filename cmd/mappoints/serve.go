package main

import (
	"fmt"
	"net/http"

	"github.com/lewtec/mappoints/internal/boundary"
	"github.com/lewtec/mappoints/mappoints"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve points, images and the boundary mask over HTTP",
	Long: `Start a read-only HTTP API for map front ends:
  GET /api/points          points as JSON, ?bbox=west,south,east,north filters
  GET /api/points.geojson  points as GeoJSON
  GET /api/mask            boundary and outside mask as GeoJSON
  GET /images/{id}         image of a point`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		app := &mappoints.App{Store: store}
		if path := cfg.BoundaryPath(); path != "" {
			app.Boundary, err = boundary.LoadBoundary(path)
			if err != nil {
				return fmt.Errorf("failed to load boundary: %w", err)
			}
		}
		handler, err := app.GetHTTPHandler()
		if err != nil {
			return err
		}

		addr := cfg.Listen
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}
		log.Info().
			Str("database", cfg.DatabasePath()).
			Str("images", cfg.ImagesPath()).
			Str("boundary", cfg.BoundaryPath()).
			Str("osm_file", cfg.OSMFile).
			Str("addr", addr).
			Msg("Starting server")

		return http.ListenAndServe(addr, handler)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to bind the webserver")
}
