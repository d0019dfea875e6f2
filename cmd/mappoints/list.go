package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/lewtec/mappoints/internal/domain"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all points",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		points, err := store.ListPoints(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(points)
		}
		printPoints(cmd.OutOrStdout(), points)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Bool("json", false, "Print points as JSON")
}

func printPoints(out io.Writer, points []*domain.Point) {
	if len(points) == 0 {
		fmt.Fprintln(out, "\nNo points found in database.")
		return
	}

	fmt.Fprintln(out, "\nAll Points")
	fmt.Fprintln(out, "-----------")
	for _, point := range points {
		fmt.Fprintf(out, "ID: %d\n", point.ID)
		fmt.Fprintf(out, "Location: %v, %v\n", point.Latitude, point.Longitude)
		fmt.Fprintf(out, "Description: %s\n", point.Description)
		fmt.Fprintf(out, "Image: %s\n", point.ImagePath)
		fmt.Fprintf(out, "Created: %s\n", point.CreatedAt.Local().Format(time.DateTime))
		fmt.Fprintln(out, "-----------")
	}
}
