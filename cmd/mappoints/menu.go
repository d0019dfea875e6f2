package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/lewtec/mappoints/mappoints"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// menuCmd represents the menu command
var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Manage points from an interactive menu",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		return runMenu(cmd.Context(), store, newConsole(cmd))
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

// runMenu loops until the user exits or input ends. Errors of a single action
// are printed and the loop goes on.
func runMenu(ctx context.Context, store *mappoints.PointStore, con *console) error {
	for {
		fmt.Fprintln(con.out, "\nPoint Manager")
		fmt.Fprintln(con.out, "1. Add new point")
		fmt.Fprintln(con.out, "2. List all points")
		fmt.Fprintln(con.out, "3. Delete a point")
		fmt.Fprintln(con.out, "4. Exit")

		choice, err := con.prompt("\nChoose an option: ")
		if errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = addInteractively(ctx, store, con)
		case "2":
			err = listInteractively(ctx, store, con)
		case "3":
			err = deleteInteractively(ctx, store, con)
		case "4":
			return nil
		default:
			fmt.Fprintln(con.out, "Invalid choice. Please try again.")
			continue
		}

		if errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			log.Debug().Err(err).Str("choice", choice).Msg("menu action failed")
			fmt.Fprintf(con.out, "Error: %v\n", err)
		}
	}
}

func listInteractively(ctx context.Context, store *mappoints.PointStore, con *console) error {
	points, err := store.ListPoints(ctx)
	if err != nil {
		return err
	}
	printPoints(con.out, points)
	return nil
}
