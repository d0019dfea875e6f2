package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/lewtec/mappoints/mappoints"
	"github.com/spf13/cobra"
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new point to the map",
	Long: `Add a point with a description and an image. The image is copied into the
images directory. Without --image every field is asked for interactively.

Example:
  mappoints add --lat 50.9413 --lon 6.9583 --description "Dom" --image ~/dom.jpg
  mappoints add`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		flags := cmd.Flags()
		if !flags.Changed("image") {
			return addInteractively(cmd.Context(), store, newConsole(cmd))
		}
		if !flags.Changed("lat") || !flags.Changed("lon") {
			return fmt.Errorf("--lat and --lon are required together with --image")
		}
		latitude, _ := flags.GetFloat64("lat")
		longitude, _ := flags.GetFloat64("lon")
		description, _ := flags.GetString("description")
		image, _ := flags.GetString("image")

		point, err := store.AddPointFromFile(cmd.Context(), latitude, longitude, description, image)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Point %d added successfully!\n", point.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().Float64("lat", 0, "Latitude in degrees")
	addCmd.Flags().Float64("lon", 0, "Longitude in degrees")
	addCmd.Flags().String("description", "", fmt.Sprintf("Description, cut to %d characters", mappoints.MaxDescriptionLength))
	addCmd.Flags().String("image", "", "Image file to copy for the point")
}

func addInteractively(ctx context.Context, store *mappoints.PointStore, con *console) error {
	fmt.Fprintln(con.out, "\nAdd a new point to the map")
	fmt.Fprintln(con.out, "--------------------------")

	latitude, err := con.promptFloat("Enter latitude: ")
	if err != nil {
		return err
	}
	longitude, err := con.promptFloat("Enter longitude: ")
	if err != nil {
		return err
	}
	description, err := con.prompt(fmt.Sprintf("Enter description (max %d chars): ", mappoints.MaxDescriptionLength))
	if err != nil {
		return err
	}

	for {
		image, err := con.prompt("Enter path to image file: ")
		if err != nil {
			return err
		}
		if _, err := os.Stat(image); errors.Is(err, os.ErrNotExist) || image == "" {
			fmt.Fprintln(con.out, "Image file not found. Please try again.")
			continue
		}
		point, err := store.AddPointFromFile(ctx, latitude, longitude, description, image)
		if err != nil {
			return fmt.Errorf("while adding point: %w", err)
		}
		fmt.Fprintf(con.out, "Point %d added successfully!\n", point.ID)
		return nil
	}
}
