package boundary

import (
	"context"
	"fmt"
	"sync"

	"go-homereel/types"
)

// Model owns the current authoritative boundary polygon. Rings only enter
// it through whole-ring replacements, so a half-edited ring is never
// observable.
type Model struct {
	mu          sync.RWMutex
	current     *types.BoundaryPolygon
	history     []types.BoundaryPolygon
	keepHistory bool
	detector    Detector // may be nil when detection is not configured
}

// NewModel builds a model. detector may be nil; keepHistory retains
// replaced polygons instead of discarding them.
func NewModel(detector Detector, keepHistory bool) *Model {
	return &Model{detector: detector, keepHistory: keepHistory}
}

// Current returns the committed polygon, or false when none is set.
func (m *Model) Current() (types.BoundaryPolygon, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return types.BoundaryPolygon{}, false
	}
	return *m.current, true
}

// History returns retained prior polygons, oldest first.
func (m *Model) History() []types.BoundaryPolygon {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.BoundaryPolygon, len(m.history))
	copy(out, m.history)
	return out
}

// SetManual commits a user-drawn ring. Manual rings are authoritative and
// carry no confidence. An invalid ring is rejected and the previously
// committed polygon stays in place.
func (m *Model) SetManual(ring []types.Geocoordinate) (types.BoundaryPolygon, error) {
	normalized, err := ValidateRing(ring)
	if err != nil {
		return types.BoundaryPolygon{}, err
	}
	poly := types.BoundaryPolygon{Ring: normalized, Manual: true}
	m.commit(poly)
	return poly, nil
}

// Detect runs the configured detector against a resolved location and a
// satellite hint, validates the result, and commits it. Manual polygons
// are not overwritten by detection.
func (m *Model) Detect(ctx context.Context, loc types.Location, hint types.ImageAsset) (types.BoundaryPolygon, error) {
	// A manual ring wins whether or not detection is configured.
	m.mu.RLock()
	if m.current != nil && m.current.Manual {
		cur := *m.current
		m.mu.RUnlock()
		return cur, nil
	}
	m.mu.RUnlock()

	if m.detector == nil {
		return types.BoundaryPolygon{}, fmt.Errorf("%w: no detector configured", types.ErrInvalidBoundary)
	}

	poly, err := m.detector.Detect(ctx, loc, hint)
	if err != nil {
		return types.BoundaryPolygon{}, types.NewStageError("boundary", loc.FormattedAddress, err)
	}

	normalized, err := ValidateRing(poly.Ring)
	if err != nil {
		return types.BoundaryPolygon{}, err
	}
	poly.Ring = normalized
	poly.Manual = false
	m.commit(poly)
	return poly, nil
}

func (m *Model) commit(poly types.BoundaryPolygon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.keepHistory {
		m.history = append(m.history, *m.current)
	}
	m.current = &poly
}

// ValidateRing normalizes and checks a candidate ring: a closing duplicate
// vertex is dropped (rings are stored open), then the ring must have at
// least 3 vertices, no two consecutive vertices identical, and no two
// non-adjacent edges crossing.
func ValidateRing(ring []types.Geocoordinate) ([]types.Geocoordinate, error) {
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 vertices, got %d", types.ErrInvalidBoundary, len(ring))
	}
	for i := range ring {
		next := ring[(i+1)%len(ring)]
		if ring[i] == next {
			return nil, fmt.Errorf("%w: consecutive duplicate vertex at %d", types.ErrInvalidBoundary, i)
		}
	}
	if selfIntersects(ring) {
		return nil, fmt.Errorf("%w: ring is self-intersecting", types.ErrInvalidBoundary)
	}
	out := make([]types.Geocoordinate, len(ring))
	copy(out, ring)
	return out, nil
}

// selfIntersects runs the O(n^2) pairwise segment test. Rings here are a
// handful of vertices, nothing fancier is needed.
func selfIntersects(ring []types.Geocoordinate) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		a1 := ring[i]
		a2 := ring[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Skip adjacent edges, they share a vertex.
			if j == i || (j+1)%n == i || j == (i+1)%n {
				continue
			}
			b1 := ring[j]
			b2 := ring[(j+1)%n]
			if segmentsCross(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

func segmentsCross(p1, p2, p3, p4 types.Geocoordinate) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func direction(a, b, c types.Geocoordinate) float64 {
	return (b.Lng-a.Lng)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lng-a.Lng)
}
