// Package boundary loads administrative boundaries stored in the ESRI rings
// JSON format and builds the mask covering everything outside of them.
package boundary

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
)

// FormatError reports a boundary document that cannot be turned into a polygon.
type FormatError struct {
	Source string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := "invalid boundary"
	if e.Source != "" {
		msg += fmt.Sprintf(" '%s'", e.Source)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Boundary is a simple polygon, in (longitude, latitude) order, without holes.
type Boundary struct {
	Polygon orb.Polygon
	Source  string
}

type esriDocument struct {
	Features json.RawMessage `json:"features"`
}

type esriFeature struct {
	Geometry *struct {
		Rings [][][]float64 `json:"rings"`
	} `json:"geometry"`
}

// LoadBoundary reads the boundary stored at path.
func LoadBoundary(path string) (*Boundary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("while reading boundary '%s': %w", path, err)
	}
	b, err := ParseBoundary(data)
	if err != nil {
		if fe, ok := err.(*FormatError); ok {
			fe.Source = path
		}
		return nil, err
	}
	b.Source = path
	return b, nil
}

// ParseBoundary builds a boundary from the first ring of the first feature of
// an ESRI rings document. Further rings and features are ignored.
func ParseBoundary(data []byte) (*Boundary, error) {
	var doc esriDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &FormatError{Reason: "not valid JSON", Err: err}
	}
	if len(doc.Features) == 0 || string(doc.Features) == "null" {
		return nil, &FormatError{Reason: "no features list"}
	}
	// only the first feature is decoded, the others may have any shape
	var features []json.RawMessage
	if err := json.Unmarshal(doc.Features, &features); err != nil {
		return nil, &FormatError{Reason: "no features list", Err: err}
	}
	if len(features) == 0 {
		return nil, &FormatError{Reason: "features list is empty"}
	}
	var first esriFeature
	if err := json.Unmarshal(features[0], &first); err != nil {
		return nil, &FormatError{Reason: "first feature has no rings", Err: err}
	}
	if first.Geometry == nil || len(first.Geometry.Rings) == 0 {
		return nil, &FormatError{Reason: "first feature has no rings"}
	}

	source := first.Geometry.Rings[0]
	ring := make(orb.Ring, 0, len(source)+1)
	for i, position := range source {
		if len(position) < 2 {
			return nil, &FormatError{Reason: fmt.Sprintf("position %d has %d coordinates, want at least 2", i, len(position))}
		}
		ring = append(ring, orb.Point{position[0], position[1]})
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	if len(ring) < 4 {
		return nil, &FormatError{Reason: "first ring needs at least 3 distinct positions"}
	}

	return &Boundary{Polygon: orb.Polygon{ring}}, nil
}

// Bound is the axis aligned bounding box of the boundary.
func (b *Boundary) Bound() orb.Bound {
	return b.Polygon.Bound()
}

// Bounds returns the bounding box as (west, south, east, north).
func (b *Boundary) Bounds() (west, south, east, north float64) {
	bound := b.Bound()
	return bound.Min.Lon(), bound.Min.Lat(), bound.Max.Lon(), bound.Max.Lat()
}
