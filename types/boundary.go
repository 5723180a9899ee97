package types

// BoundaryPolygon is the property outline: an ordered ring of at least 3
// coordinates, stored open (first vertex is not repeated at the end).
type BoundaryPolygon struct {
	Ring []Geocoordinate `json:"ring"`
	// Confidence is set by automatic detection. Manual rings are
	// authoritative and carry 0.
	Confidence float64 `json:"confidence"`
	Manual     bool    `json:"manual"`
}

// VertexCount returns the number of ring vertices.
func (p BoundaryPolygon) VertexCount() int {
	return len(p.Ring)
}

// Centroid returns the arithmetic mean of the ring vertices. Good enough
// for anchoring overlays; not an area-weighted centroid.
func (p BoundaryPolygon) Centroid() Geocoordinate {
	if len(p.Ring) == 0 {
		return Geocoordinate{}
	}
	var sumLat, sumLng float64
	for _, v := range p.Ring {
		sumLat += v.Lat
		sumLng += v.Lng
	}
	n := float64(len(p.Ring))
	return Geocoordinate{Lat: sumLat / n, Lng: sumLng / n}
}
