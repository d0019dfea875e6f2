package mappoints

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lewtec/mappoints/internal/domain"
	"github.com/lewtec/mappoints/internal/repository"
	"github.com/rs/zerolog/log"
)

// PointStore keeps annotated points in SQLite and their images on disk.
//
// Image paths are stored relative to Config.DataDir so the data directory can
// be moved as a whole.
type PointStore struct {
	Database *sql.DB
	Config   *Config

	// now is the clock used for created_at, replaced in tests
	now func() time.Time
}

// NewPointStore returns a store on database. Call Initialize before use.
func NewPointStore(database *sql.DB, config *Config) *PointStore {
	return &PointStore{
		Database: database,
		Config:   config,
		now:      time.Now,
	}
}

// DeleteOutcome describes what DeletePoint removed.
type DeleteOutcome struct {
	Point        domain.Point
	ImageRemoved bool
	// Warning is set when the row was deleted but the image could not be
	Warning *domain.AssetError
}

// Initialize creates the images directory and brings the schema up to date.
func (s *PointStore) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(s.Config.ImagesPath(), 0755); err != nil {
		return &domain.StorageError{Op: "creating images directory", Err: err}
	}
	if err := PrepareDatabase(ctx, s.Database); err != nil {
		return &domain.StorageError{Op: "preparing database", Err: err}
	}
	return nil
}

// AddPoint stores a new point and returns its ID.
func (s *PointStore) AddPoint(ctx context.Context, latitude, longitude float64, description, imagePath string) (int64, error) {
	point, err := s.insert(ctx, latitude, longitude, description, imagePath)
	if err != nil {
		return 0, err
	}
	return point.ID, nil
}

func (s *PointStore) insert(ctx context.Context, latitude, longitude float64, description, imagePath string) (*domain.Point, error) {
	if err := validatePoint(latitude, longitude, description, imagePath); err != nil {
		return nil, err
	}
	point, err := repository.NewPointRepository(s.Database).Create(ctx, latitude, longitude, description, imagePath, s.now())
	if err != nil {
		return nil, &domain.StorageError{Op: "inserting point", Err: err}
	}
	log.Debug().
		Int64("id", point.ID).
		Float64("lat", latitude).
		Float64("lon", longitude).
		Str("image", imagePath).
		Msg("point added")
	return point, nil
}

func validatePoint(latitude, longitude float64, description, imagePath string) error {
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) {
		return &domain.ValidationError{Field: "latitude", Reason: "must be a finite number"}
	}
	if math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		return &domain.ValidationError{Field: "longitude", Reason: "must be a finite number"}
	}
	if strings.TrimSpace(description) == "" {
		return &domain.ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if strings.TrimSpace(imagePath) == "" {
		return &domain.ValidationError{Field: "image_path", Reason: "must not be empty"}
	}
	return nil
}

// GetPoint returns the point with id, or a NotFoundError.
func (s *PointStore) GetPoint(ctx context.Context, id int64) (*domain.Point, error) {
	point, err := repository.NewPointRepository(s.Database).GetByID(ctx, id)
	if err != nil {
		return nil, &domain.StorageError{Op: fmt.Sprintf("fetching point %d", id), Err: err}
	}
	if point == nil {
		return nil, &domain.NotFoundError{ID: id}
	}
	return point, nil
}

// ListPoints returns every point in insertion order, never nil.
func (s *PointStore) ListPoints(ctx context.Context) ([]*domain.Point, error) {
	points, err := repository.NewPointRepository(s.Database).List(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: "listing points", Err: err}
	}
	return points, nil
}

// DeletePoint removes the row and then its image file. The lookup and the row
// deletion share one transaction. A missing image does not fail the call, it is
// reported on the outcome.
func (s *PointStore) DeletePoint(ctx context.Context, id int64) (*DeleteOutcome, error) {
	tx, err := s.Database.BeginTx(ctx, nil)
	if err != nil {
		return nil, &domain.StorageError{Op: "starting delete transaction", Err: err}
	}
	defer tx.Rollback()

	repo := repository.NewPointRepositoryWithTx(tx)
	point, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, &domain.StorageError{Op: fmt.Sprintf("fetching point %d", id), Err: err}
	}
	if point == nil {
		return nil, &domain.NotFoundError{ID: id}
	}
	if _, err := repo.Delete(ctx, id); err != nil {
		return nil, &domain.StorageError{Op: fmt.Sprintf("deleting point %d", id), Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &domain.StorageError{Op: "committing delete transaction", Err: err}
	}

	outcome := &DeleteOutcome{Point: *point}
	imageFile := s.ImageFile(point)
	err = os.Remove(imageFile)
	switch {
	case err == nil:
		outcome.ImageRemoved = true
		log.Debug().Int64("id", id).Str("image", imageFile).Msg("point and image deleted")
	case errors.Is(err, fs.ErrNotExist):
		outcome.Warning = &domain.AssetError{Path: imageFile, Op: "removing image", Err: err}
		log.Warn().Int64("id", id).Str("image", imageFile).Msg("point deleted, but image file was not found")
	default:
		outcome.Warning = &domain.AssetError{Path: imageFile, Op: "removing image", Err: err}
		log.Error().Err(err).Int64("id", id).Str("image", imageFile).Msg("point deleted, but image file could not be removed")
	}
	return outcome, nil
}

// ImageFile resolves the stored image path of point on the local filesystem.
func (s *PointStore) ImageFile(point *domain.Point) string {
	return s.Config.Resolve(filepath.FromSlash(point.ImagePath))
}
