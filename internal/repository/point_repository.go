package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lewtec/mappoints/internal/domain"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const pointColumns = `id, latitude, longitude, description, image_path, created_at`

// PointRepository implements domain.PointRepository over the points table
type PointRepository struct {
	db DBTX
}

// NewPointRepository creates a new PointRepository
func NewPointRepository(db *sql.DB) *PointRepository {
	return &PointRepository{db: db}
}

// NewPointRepositoryWithTx creates a new PointRepository with a transaction
func NewPointRepositoryWithTx(tx *sql.Tx) *PointRepository {
	return &PointRepository{db: tx}
}

// Create inserts a new point
func (r *PointRepository) Create(ctx context.Context, latitude, longitude float64, description, imagePath string, createdAt time.Time) (*domain.Point, error) {
	createdAt = createdAt.UTC()
	result, err := r.db.ExecContext(ctx, `
INSERT INTO points (latitude, longitude, description, image_path, created_at)
VALUES (?, ?, ?, ?, ?)`, latitude, longitude, description, imagePath, createdAt)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &domain.Point{
		ID:          id,
		Latitude:    latitude,
		Longitude:   longitude,
		Description: description,
		ImagePath:   imagePath,
		CreatedAt:   createdAt,
	}, nil
}

// GetByID retrieves a point by its ID
func (r *PointRepository) GetByID(ctx context.Context, id int64) (*domain.Point, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+pointColumns+` FROM points WHERE id = ?`, id)

	point, err := scanPoint(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return point, nil
}

// List retrieves all points
func (r *PointRepository) List(ctx context.Context) ([]*domain.Point, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+pointColumns+` FROM points ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.Point{}
	for rows.Next() {
		point, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, point)
	}

	return result, rows.Err()
}

// Count returns the total number of points
func (r *PointRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM points`).Scan(&count)
	return count, err
}

// Delete removes a point by ID
func (r *PointRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM points WHERE id = ?`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPoint(s scanner) (*domain.Point, error) {
	var point domain.Point
	var createdAt sql.NullTime
	err := s.Scan(
		&point.ID,
		&point.Latitude,
		&point.Longitude,
		&point.Description,
		&point.ImagePath,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	point.CreatedAt = createdAt.Time
	return &point, nil
}

// Verify that PointRepository implements domain.PointRepository
var _ domain.PointRepository = (*PointRepository)(nil)
