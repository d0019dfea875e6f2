package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new point store",
	Long: `Initialize a new point store by creating:
- A configuration file (mappoints.yaml, or the --config path)
- The SQLite database with the points table
- The images directory

Example:
  mappoints init --data-dir ./cologne
  mappoints init --config cologne.yaml --boundary stadtgrenze.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		filename := configFile
		if filename == "" {
			filename = defaultConfigFile
		}
		if fileExists(filename) {
			fmt.Fprintf(out, "Configuration file already exists: %s\n", filename)
		} else {
			fmt.Fprintf(out, "Creating configuration file: %s\n", filename)
			if err := cfg.Save(filename); err != nil {
				return fmt.Errorf("failed to create config file: %w", err)
			}
		}

		fmt.Fprintf(out, "Preparing database: %s\n", cfg.DatabasePath())
		store, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		points, err := store.ListPoints(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Images directory: %s\n", cfg.ImagesPath())
		fmt.Fprintf(out, "✓ Initialization complete, %d points stored\n", len(points))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
