package boundary

import (
	"math"

	"go-homereel/types"
)

const tileSize = 256.0

// Viewport describes the raster a polygon will be drawn over: the same
// center and zoom the tile was fetched with, plus its pixel dimensions.
// Using the fetch parameters keeps the overlay registered with the
// underlying imagery at any zoom level.
type Viewport struct {
	Center types.Geocoordinate
	Zoom   int
	Width  int
	Height int
}

// Project maps a geocoordinate to pixel coordinates inside the viewport
// using the Web Mercator projection the imagery provider renders with.
func Project(coord types.Geocoordinate, vp Viewport) (x, y float64) {
	scale := math.Exp2(float64(vp.Zoom))
	wx, wy := worldCoord(coord)
	cx, cy := worldCoord(vp.Center)

	x = (wx-cx)*scale + float64(vp.Width)/2
	y = (wy-cy)*scale + float64(vp.Height)/2
	return x, y
}

// ProjectRing projects every vertex of a ring into the viewport.
func ProjectRing(ring []types.Geocoordinate, vp Viewport) [][2]float64 {
	out := make([][2]float64, len(ring))
	for i, v := range ring {
		x, y := Project(v, vp)
		out[i] = [2]float64{x, y}
	}
	return out
}

// worldCoord returns the 256x256 world-space Mercator coordinate.
func worldCoord(coord types.Geocoordinate) (x, y float64) {
	siny := math.Sin(coord.Lat * math.Pi / 180)
	// Clamp near the poles so the projection stays finite.
	siny = math.Min(math.Max(siny, -0.9999), 0.9999)

	x = tileSize * (0.5 + coord.Lng/360)
	y = tileSize * (0.5 - math.Log((1+siny)/(1-siny))/(4*math.Pi))
	return x, y
}
