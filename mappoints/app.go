package mappoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/lewtec/mappoints/internal/boundary"
	"github.com/lewtec/mappoints/internal/domain"
	"github.com/lewtec/mappoints/internal/spatial"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// App serves stored points, their images and the boundary mask to map front ends.
type App struct {
	Store *PointStore
	// Boundary is optional, /api/mask answers 404 without it
	Boundary *boundary.Boundary
}

func (a *App) GetHTTPHandler() (http.Handler, error) {
	var mask []byte
	if a.Boundary != nil {
		fc, err := boundary.MaskFeatureCollection(a.Boundary)
		if err != nil {
			return nil, fmt.Errorf("while computing boundary mask: %w", err)
		}
		mask, err = fc.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("while encoding boundary mask: %w", err)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/points", func(w http.ResponseWriter, r *http.Request) {
		points, ok := a.points(w, r)
		if !ok {
			return
		}
		writeJSON(w, points)
	})
	mux.HandleFunc("GET /api/points.geojson", func(w http.ResponseWriter, r *http.Request) {
		points, ok := a.points(w, r)
		if !ok {
			return
		}
		fc := PointsFeatureCollection(points)
		data, err := fc.MarshalJSON()
		if err != nil {
			log.Error().Err(err).Msg("http: while encoding points")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write(data)
	})
	mux.HandleFunc("GET /api/mask", func(w http.ResponseWriter, r *http.Request) {
		if mask == nil {
			http.Error(w, "no boundary configured", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write(mask)
	})
	mux.HandleFunc("GET /images/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		point, err := a.Store.GetPoint(r.Context(), id)
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			log.Error().Err(err).Int64("id", id).Msg("http: while fetching point")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		imageFile := a.Store.ImageFile(point)
		if _, err := os.Stat(imageFile); err != nil {
			log.Warn().Int64("id", id).Str("image", imageFile).Msg("http: image of point is missing")
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, imageFile)
	})

	var handler http.Handler = mux
	handler = HTTPLogger(handler)
	return handler, nil
}

// points lists the stored points, filtered by the bbox query parameter when present.
func (a *App) points(w http.ResponseWriter, r *http.Request) ([]*domain.Point, bool) {
	points, err := a.Store.ListPoints(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("http: while listing points")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	bbox := r.URL.Query().Get("bbox")
	if bbox == "" {
		return points, true
	}
	bound, err := ParseBBox(bbox)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return spatial.New(points).InBounds(bound), true
}

// ParseBBox parses "west,south,east,north".
func ParseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("bbox must be west,south,east,north")
	}
	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bbox value %d: %w", i+1, err)
		}
		v[i] = f
	}
	if v[0] > v[2] || v[1] > v[3] {
		return orb.Bound{}, fmt.Errorf("bbox west/south must not exceed east/north")
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

// PointsFeatureCollection converts points to GeoJSON point features.
func PointsFeatureCollection(points []*domain.Point) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, point := range points {
		feature := geojson.NewFeature(orb.Point{point.Longitude, point.Latitude})
		feature.ID = point.ID
		feature.Properties["description"] = point.Description
		feature.Properties["image_url"] = fmt.Sprintf("/images/%d", point.ID)
		feature.Properties["created_at"] = point.CreatedAt
		fc.Append(feature)
	}
	return fc
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("http: while encoding response")
	}
}
