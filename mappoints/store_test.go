package mappoints

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lewtec/mappoints/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *PointStore {
	t.Helper()
	config := DefaultConfig()
	config.DataDir = t.TempDir()

	database, err := GetDatabase(config.DatabasePath())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	store := NewPointStore(database, config)
	require.NoError(t, store.Initialize(context.Background()))
	return store
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func imagesIn(t *testing.T, store *PointStore) []string {
	t.Helper()
	entries, err := os.ReadDir(store.Config.ImagesPath())
	require.NoError(t, err)
	names := []string{}
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestInitializeIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddPoint(ctx, 1, 2, "kept", "images/a.jpg")
	require.NoError(t, err)

	require.NoError(t, store.Initialize(ctx))
	require.NoError(t, store.Initialize(ctx))

	points, err := store.ListPoints(ctx)
	require.NoError(t, err)
	assert.Len(t, points, 1)
	assert.DirExists(t, store.Config.ImagesPath())
}

func TestAddPointThenList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.AddPoint(ctx, 50.9333, 6.95, "Test point in Cologne", "images/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	points, err := store.ListPoints(ctx)
	require.NoError(t, err)
	require.Len(t, points, 1)

	point := points[0]
	assert.Equal(t, int64(1), point.ID)
	assert.Equal(t, 50.9333, point.Latitude)
	assert.Equal(t, 6.95, point.Longitude)
	assert.Equal(t, "Test point in Cologne", point.Description)
	assert.Equal(t, "images/a.jpg", point.ImagePath)
	assert.False(t, point.CreatedAt.IsZero())
}

func TestCreatedAtFollowsInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}

	for i := 0; i < 5; i++ {
		_, err := store.AddPoint(ctx, float64(i), float64(i), "p", "images/p.jpg")
		require.NoError(t, err)
	}

	points, err := store.ListPoints(ctx)
	require.NoError(t, err)
	require.Len(t, points, 5)
	for i := 1; i < len(points); i++ {
		assert.Greater(t, points[i].ID, points[i-1].ID)
		assert.True(t, points[i].CreatedAt.After(points[i-1].CreatedAt))
	}
}

func TestAddPointValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cases := map[string]struct {
		description string
		imagePath   string
		field       string
	}{
		"empty description": {"", "images/a.jpg", "description"},
		"blank description": {"   ", "images/a.jpg", "description"},
		"empty image path":  {"a point", "", "image_path"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := store.AddPoint(ctx, 1, 2, c.description, c.imagePath)

			var validationErr *domain.ValidationError
			require.True(t, errors.As(err, &validationErr), "got %v", err)
			assert.Equal(t, c.field, validationErr.Field)
		})
	}

	points, err := store.ListPoints(ctx)
	require.NoError(t, err)
	assert.Empty(t, points, "no row is created for invalid input")
}

func TestAddPointStorageError(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Database.Close())

	_, err := store.AddPoint(context.Background(), 1, 2, "a", "images/a.jpg")
	var storageErr *domain.StorageError
	assert.True(t, errors.As(err, &storageErr), "got %v", err)

	_, err = store.ListPoints(context.Background())
	assert.True(t, errors.As(err, &storageErr), "got %v", err)
}

func TestListPointsEmpty(t *testing.T) {
	store := newTestStore(t)

	points, err := store.ListPoints(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestDeletePoint(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	imagePath := filepath.Join(store.Config.ImagesPath(), "a.png")
	writePNG(t, imagePath)
	id, err := store.AddPoint(ctx, 50.9333, 6.95, "to delete", "images/a.png")
	require.NoError(t, err)
	other, err := store.AddPoint(ctx, 1, 1, "stays", "images/b.png")
	require.NoError(t, err)

	outcome, err := store.DeletePoint(ctx, id)
	require.NoError(t, err)
	assert.True(t, outcome.ImageRemoved)
	assert.Nil(t, outcome.Warning)
	assert.Equal(t, id, outcome.Point.ID)
	assert.NoFileExists(t, imagePath)

	points, err := store.ListPoints(ctx)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, other, points[0].ID)
}

func TestDeletePointMissingImage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.AddPoint(ctx, 1, 2, "image never existed", "images/missing.jpg")
	require.NoError(t, err)

	outcome, err := store.DeletePoint(ctx, id)
	require.NoError(t, err, "a missing image never blocks deleting the row")
	assert.False(t, outcome.ImageRemoved)
	require.NotNil(t, outcome.Warning)
	assert.True(t, errors.Is(outcome.Warning, os.ErrNotExist))

	_, err = store.GetPoint(ctx, id)
	var notFound *domain.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestDeletePointNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	imagePath := filepath.Join(store.Config.ImagesPath(), "a.png")
	writePNG(t, imagePath)
	_, err := store.AddPoint(ctx, 1, 2, "untouched", "images/a.png")
	require.NoError(t, err)

	outcome, err := store.DeletePoint(ctx, 42)
	assert.Nil(t, outcome)

	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound), "got %v", err)
	assert.Equal(t, int64(42), notFound.ID)

	points, err := store.ListPoints(ctx)
	require.NoError(t, err)
	assert.Len(t, points, 1)
	assert.FileExists(t, imagePath)
}

func TestImageFile(t *testing.T) {
	store := newTestStore(t)

	relative := &domain.Point{ImagePath: "images/a.jpg"}
	assert.Equal(t, filepath.Join(store.Config.DataDir, "images", "a.jpg"), store.ImageFile(relative))

	absolute := &domain.Point{ImagePath: filepath.Join(t.TempDir(), "b.jpg")}
	assert.Equal(t, absolute.ImagePath, store.ImageFile(absolute))
}
