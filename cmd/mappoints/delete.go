package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/lewtec/mappoints/internal/domain"
	"github.com/lewtec/mappoints/mappoints"
	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a point and its image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid point ID '%s': %w", args[0], err)
		}

		store, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			con := newConsole(cmd)
			confirm, err := con.prompt(fmt.Sprintf("Are you sure you want to delete point %d? (yes/no): ", id))
			if err != nil {
				return err
			}
			if strings.ToLower(confirm) != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled.")
				return nil
			}
		}

		outcome, err := store.DeletePoint(cmd.Context(), id)
		if err != nil {
			return err
		}
		reportDelete(cmd.OutOrStdout(), outcome)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

func reportDelete(out io.Writer, outcome *mappoints.DeleteOutcome) {
	switch {
	case outcome.ImageRemoved:
		fmt.Fprintf(out, "Point %d and its image were deleted successfully!\n", outcome.Point.ID)
	case outcome.Warning != nil && errors.Is(outcome.Warning, fs.ErrNotExist):
		fmt.Fprintf(out, "Point %d was deleted, but image file was not found.\n", outcome.Point.ID)
	default:
		fmt.Fprintf(out, "Point %d was deleted, but its image could not be removed: %v\n", outcome.Point.ID, outcome.Warning)
	}
}

func deleteInteractively(ctx context.Context, store *mappoints.PointStore, con *console) error {
	fmt.Fprintln(con.out, "\nDelete a point")
	fmt.Fprintln(con.out, "-------------")

	points, err := store.ListPoints(ctx)
	if err != nil {
		return err
	}
	printPoints(con.out, points)

	id, err := con.promptInt("\nEnter the ID of the point to delete (or 0 to cancel): ")
	if err != nil {
		return err
	}
	if id == 0 {
		fmt.Fprintln(con.out, "Deletion cancelled.")
		return nil
	}

	confirm, err := con.prompt(fmt.Sprintf("Are you sure you want to delete point %d? (yes/no): ", id))
	if err != nil {
		return err
	}
	if strings.ToLower(confirm) != "yes" {
		fmt.Fprintln(con.out, "Deletion cancelled.")
		return nil
	}

	outcome, err := store.DeletePoint(ctx, id)
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		fmt.Fprintf(con.out, "No point found with ID %d\n", id)
		return nil
	}
	if err != nil {
		return err
	}
	reportDelete(con.out, outcome)
	return nil
}
