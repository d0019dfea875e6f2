package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lewtec/mappoints/mappoints"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "mappoints.yaml"

var (
	cfg        *mappoints.Config
	configFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mappoints",
	Short: "Keep annotated map points and boundary masks for map front ends",
	Long: strings.TrimSpace(`
Store points of interest with a description and a photo, and build the mask that
greys out everything outside of a city boundary. Map front ends read both through
the 'serve' API or the files written by 'mask'.
    `),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal().Err(err).Msg("Error executing command")
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default "+defaultConfigFile+" when present)")
	rootCmd.PersistentFlags().StringP("database", "d", "", "Database file path")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory image paths are stored relative to")
	rootCmd.PersistentFlags().String("images", "", "Directory point images are copied to")
	rootCmd.PersistentFlags().StringP("boundary", "b", "", "Boundary file in ESRI rings JSON format")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (auto, console, json)")
}

// loadConfig merges, in increasing priority: defaults, the config file, the
// environment (and .env), command line flags.
func loadConfig(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("while loading .env: %w", err)
	}

	filename := configFile
	if filename == "" {
		filename = defaultConfigFile
	}
	var err error
	cfg, err = mappoints.LoadConfig(filename)
	if errors.Is(err, fs.ErrNotExist) && (configFile == "" || cmd.Name() == "init") {
		cfg, err = mappoints.DefaultConfig(), nil
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnv()

	flags := cmd.Flags()
	for name, field := range map[string]*string{
		"database":   &cfg.Database,
		"data-dir":   &cfg.DataDir,
		"images":     &cfg.ImagesDir,
		"boundary":   &cfg.Boundary,
		"log-level":  &cfg.Log.Level,
		"log-format": &cfg.Log.Format,
	} {
		if flags.Changed(name) {
			*field, _ = flags.GetString(name)
		}
	}

	return cfg.Log.Setup(cmd.ErrOrStderr())
}

// openStore opens and prepares the configured point store. The returned func
// closes the database.
func openStore(ctx context.Context) (*mappoints.PointStore, func(), error) {
	db, err := mappoints.GetDatabase(cfg.DatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := mappoints.NewPointStore(db, cfg)
	if err := store.Initialize(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to prepare database: %w", err)
	}
	log.Debug().
		Str("database", cfg.DatabasePath()).
		Str("images", cfg.ImagesPath()).
		Msg("point store ready")
	return store, func() { db.Close() }, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
