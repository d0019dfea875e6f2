package domain

import (
	"context"
	"time"
)

// Point is an annotated location on the map
type Point struct {
	ID          int64     `json:"id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Description string    `json:"description"`
	ImagePath   string    `json:"image_path"`
	CreatedAt   time.Time `json:"created_at"`
}

// PointRepository defines the interface for point storage operations
type PointRepository interface {
	// Create inserts a new point and returns it with its assigned ID
	Create(ctx context.Context, latitude, longitude float64, description, imagePath string, createdAt time.Time) (*Point, error)

	// GetByID retrieves a point by its ID, nil if it does not exist
	GetByID(ctx context.Context, id int64) (*Point, error)

	// List retrieves all points in insertion order
	List(ctx context.Context) ([]*Point, error)

	// Count returns the total number of points
	Count(ctx context.Context) (int64, error)

	// Delete removes a point by ID and reports whether a row was removed
	Delete(ctx context.Context, id int64) (bool, error)
}
