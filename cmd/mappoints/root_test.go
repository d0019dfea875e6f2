package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lewtec/mappoints/internal/domain"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag back to its default, cobra keeps parsed values
// between executions of the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, stderr bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// newTestConfig writes a config rooted in a temporary directory and returns
// its path and the data directory.
func newTestConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mappoints.yaml")
	content := fmt.Sprintf("data_dir: %s\nlog:\n  level: error\n  format: json\n", dir)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path, dir
}

func writeTestImage(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "photo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 2, 2))))
	return path
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "new.yaml")

	out, err := executeCommand(t, "", "init", "--config", config, "--data-dir", dir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Creating configuration file: "+config)
	assert.Contains(t, out, "✓ Initialization complete, 0 points stored")
	assert.FileExists(t, config)
	assert.FileExists(t, filepath.Join(dir, "map_points.db"))
	assert.DirExists(t, filepath.Join(dir, "images"))

	out, err = executeCommand(t, "", "init", "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file already exists")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := executeCommand(t, "", "list", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestAddAndListCommands(t *testing.T) {
	config, dir := newTestConfig(t)
	image := writeTestImage(t, t.TempDir())

	out, err := executeCommand(t, "", "add", "-c", config,
		"--lat", "50.9413", "--lon", "6.9583", "--description", "Dom", "--image", image)
	require.NoError(t, err)
	assert.Contains(t, out, "Point 1 added successfully!")
	assert.FileExists(t, filepath.Join(dir, "images", "point_50.9413_6.9583.png"))

	out, err = executeCommand(t, "", "list", "-c", config)
	require.NoError(t, err)
	assert.Contains(t, out, "ID: 1")
	assert.Contains(t, out, "Location: 50.9413, 6.9583")
	assert.Contains(t, out, "Description: Dom")
	assert.Contains(t, out, "Image: images/point_50.9413_6.9583.png")

	out, err = executeCommand(t, "", "list", "-c", config, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"description": "Dom"`)
}

func TestAddCommandNeedsCoordinates(t *testing.T) {
	config, _ := newTestConfig(t)
	image := writeTestImage(t, t.TempDir())

	_, err := executeCommand(t, "", "add", "-c", config, "--image", image)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--lat and --lon are required")
}

func TestAddCommandInteractive(t *testing.T) {
	config, _ := newTestConfig(t)
	image := writeTestImage(t, t.TempDir())

	stdin := strings.Join([]string{"50.9", "6.9", "Rheinufer", "/does/not/exist.png", image}, "\n") + "\n"
	out, err := executeCommand(t, stdin, "add", "-c", config)
	require.NoError(t, err)
	assert.Contains(t, out, "Image file not found. Please try again.")
	assert.Contains(t, out, "Point 1 added successfully!")
}

func TestDeleteCommand(t *testing.T) {
	config, dir := newTestConfig(t)
	image := writeTestImage(t, t.TempDir())
	_, err := executeCommand(t, "", "add", "-c", config, "--lat", "1", "--lon", "2", "--description", "x", "--image", image)
	require.NoError(t, err)

	out, err := executeCommand(t, "no\n", "delete", "-c", config, "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deletion cancelled.")

	out, err = executeCommand(t, "", "delete", "-c", config, "1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Point 1 and its image were deleted successfully!")
	assert.NoFileExists(t, filepath.Join(dir, "images", "point_1_2.png"))

	_, err = executeCommand(t, "", "delete", "-c", config, "1", "--yes")
	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, int64(1), notFound.ID)

	_, err = executeCommand(t, "", "delete", "-c", config, "abc", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid point ID")
}

func TestMenuCommand(t *testing.T) {
	config, _ := newTestConfig(t)
	image := writeTestImage(t, t.TempDir())

	stdin := strings.Join([]string{
		"2",
		"9",
		"1", "50.9", "6.9", "Rheinufer", image,
		"1", "not a number",
		"2",
		"3", "42", "yes",
		"3", "1", "yes",
		"4",
	}, "\n") + "\n"
	out, err := executeCommand(t, stdin, "menu", "-c", config)
	require.NoError(t, err)

	assert.Contains(t, out, "No points found in database.")
	assert.Contains(t, out, "Invalid choice. Please try again.")
	assert.Contains(t, out, "Point 1 added successfully!")
	assert.Contains(t, out, "Error: please enter a valid number, got 'not a number'")
	assert.Contains(t, out, "Description: Rheinufer")
	assert.Contains(t, out, "No point found with ID 42")
	assert.Contains(t, out, "Point 1 and its image were deleted successfully!")
}

func TestMenuCommandEndsOnClosedInput(t *testing.T) {
	config, _ := newTestConfig(t)

	out, err := executeCommand(t, "2\n", "menu", "-c", config)
	require.NoError(t, err)
	assert.Contains(t, out, "No points found in database.")
}

const testBoundary = `{"features": [{"geometry": {"rings": [[[6.8, 50.8], [7.1, 50.8], [7.1, 51.0], [6.8, 51.0], [6.8, 50.8]]]}}]}`

func TestMaskCommand(t *testing.T) {
	config, dir := newTestConfig(t)
	boundaryFile := filepath.Join(dir, "boundary.json")
	require.NoError(t, os.WriteFile(boundaryFile, []byte(testBoundary), 0644))

	out, err := executeCommand(t, "", "mask", "-c", config, boundaryFile)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection([]byte(out))
	require.NoError(t, err)
	assert.Len(t, fc.Features, 2)

	output := filepath.Join(dir, "mask.geojson")
	out, err = executeCommand(t, "", "mask", "-c", config, "-b", boundaryFile, "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Mask written to "+output)
	assert.FileExists(t, output)

	_, err = executeCommand(t, "", "mask", "-c", config)
	require.Error(t, err)
}

func TestNearbyCommand(t *testing.T) {
	config, dir := newTestConfig(t)
	images := t.TempDir()
	boundaryFile := filepath.Join(dir, "boundary.json")
	require.NoError(t, os.WriteFile(boundaryFile, []byte(testBoundary), 0644))

	for _, p := range []struct{ lat, lon, desc string }{
		{"50.94", "6.96", "Dom"},
		{"50.93", "6.95", "Neumarkt"},
		{"48.14", "11.58", "Marienplatz"},
	} {
		_, err := executeCommand(t, "", "add", "-c", config,
			"--lat", p.lat, "--lon", p.lon, "--description", p.desc, "--image", writeTestImage(t, images))
		require.NoError(t, err)
	}

	out, err := executeCommand(t, "", "nearby", "-c", config, "--lat", "48.1", "--lon", "11.5", "-k", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Marienplatz")
	assert.NotContains(t, out, "Dom")

	out, err = executeCommand(t, "", "nearby", "-c", config, "--within-boundary", "-b", boundaryFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Dom")
	assert.Contains(t, out, "Neumarkt")
	assert.NotContains(t, out, "Marienplatz")

	_, err = executeCommand(t, "", "nearby", "-c", config)
	require.Error(t, err)
}
