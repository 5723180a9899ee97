package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"go-homereel/boundary"
	"go-homereel/types"
)

var outlineColor = color.RGBA{R: 0xFF, G: 0x30, B: 0x30, A: 0xFF}

const outlineWidth = 3

// DrawBoundary rasterizes the property outline onto a fetched tile,
// projecting the ring with the same center/zoom the tile was requested
// with. Returns PNG bytes; the input asset is untouched.
func DrawBoundary(asset types.ImageAsset, poly types.BoundaryPolygon) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(asset.Pixels))
	if err != nil {
		return nil, fmt.Errorf("decode asset %s: %w", asset.ID, err)
	}

	rgba := image.NewRGBA(src.Bounds())
	draw.Draw(rgba, src.Bounds(), src, src.Bounds().Min, draw.Src)

	vp := boundary.Viewport{
		Center: asset.Center,
		Zoom:   asset.Params.Zoom,
		Width:  asset.Width,
		Height: asset.Height,
	}
	pts := boundary.ProjectRing(poly.Ring, vp)
	for i := range pts {
		next := pts[(i+1)%len(pts)]
		drawLine(rgba, pts[i][0], pts[i][1], next[0], next[1])
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawLine draws a thick segment by stamping a small square along the
// line. Plenty for a 3px outline on a 640px tile.
func drawLine(img *image.RGBA, x1, y1, x2, y2 float64) {
	steps := int(math.Max(math.Abs(x2-x1), math.Abs(y2-y1)))
	if steps < 1 {
		steps = 1
	}
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		x := int(math.Round(x1 + (x2-x1)*t))
		y := int(math.Round(y1 + (y2-y1)*t))
		stamp(img, x, y)
	}
}

func stamp(img *image.RGBA, cx, cy int) {
	half := outlineWidth / 2
	b := img.Bounds()
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			x, y := cx+dx, cy+dy
			if x >= b.Min.X && x < b.Max.X && y >= b.Min.Y && y < b.Max.Y {
				img.SetRGBA(x, y, outlineColor)
			}
		}
	}
}
