package mappoints

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDatabaseKeepsPathLiteral(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "köln?#100%")
	require.NoError(t, os.MkdirAll(dir, 0755))
	filename := filepath.Join(dir, "map points.db")

	database, err := GetDatabase(filename)
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, PrepareDatabase(context.Background(), database))

	_, err = database.Exec(`INSERT INTO points (latitude, longitude, description, image_path) VALUES (1, 2, 'x', 'images/a.jpg')`)
	require.NoError(t, err)

	assert.FileExists(t, filename)
	entries, err := os.ReadDir(filepath.Dir(dir))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no database is created next to the intended directory")
}

func TestDatabaseURI(t *testing.T) {
	assert.Equal(t, "file:map_points.db?_time_format=sqlite", databaseURI("map_points.db"))
	assert.Equal(t, "file:/data/a%3Fb%23c.db?_time_format=sqlite", databaseURI("/data/a?b#c.db"))
}
