package boundary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-homereel/types"
)

func square() []types.Geocoordinate {
	return []types.Geocoordinate{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 1},
		{Lat: 1, Lng: 1},
		{Lat: 1, Lng: 0},
	}
}

// bowtie crosses itself in the middle.
func bowtie() []types.Geocoordinate {
	return []types.Geocoordinate{
		{Lat: 0, Lng: 0},
		{Lat: 1, Lng: 1},
		{Lat: 0, Lng: 1},
		{Lat: 1, Lng: 0},
	}
}

func TestValidateRingNormalizesClosure(t *testing.T) {
	closed := append(square(), types.Geocoordinate{Lat: 0, Lng: 0})
	ring, err := ValidateRing(closed)
	require.NoError(t, err)
	assert.Len(t, ring, 4, "closing duplicate is dropped, ring stored open")
}

func TestValidateRingRejectsTooFewVertices(t *testing.T) {
	_, err := ValidateRing(square()[:2])
	assert.ErrorIs(t, err, types.ErrInvalidBoundary)
}

func TestValidateRingRejectsConsecutiveDuplicates(t *testing.T) {
	ring := square()
	ring = append(ring, ring[3]) // duplicate the last vertex
	_, err := ValidateRing(ring)
	assert.ErrorIs(t, err, types.ErrInvalidBoundary)
}

func TestValidateRingRejectsSelfIntersection(t *testing.T) {
	_, err := ValidateRing(bowtie())
	assert.ErrorIs(t, err, types.ErrInvalidBoundary)
}

func TestSetManualKeepsPreviousOnRejection(t *testing.T) {
	m := NewModel(nil, false)

	committed, err := m.SetManual(square())
	require.NoError(t, err)
	assert.True(t, committed.Manual)

	_, err = m.SetManual(bowtie())
	require.ErrorIs(t, err, types.ErrInvalidBoundary)

	cur, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, committed, cur, "rejected ring must not disturb the committed polygon")
}

func TestSetManualWithNoPriorLeavesUnset(t *testing.T) {
	m := NewModel(nil, false)
	_, err := m.SetManual(bowtie())
	require.Error(t, err)

	_, ok := m.Current()
	assert.False(t, ok)
}

type fixedDetector struct {
	poly types.BoundaryPolygon
}

func (d fixedDetector) Detect(_ context.Context, _ types.Location, _ types.ImageAsset) (types.BoundaryPolygon, error) {
	return d.poly, nil
}

func TestDetectCommitsValidatedPolygon(t *testing.T) {
	m := NewModel(fixedDetector{poly: types.BoundaryPolygon{Ring: square(), Confidence: 0.82}}, false)

	poly, err := m.Detect(context.Background(), types.Location{}, types.ImageAsset{})
	require.NoError(t, err)
	assert.InDelta(t, 0.82, poly.Confidence, 1e-9)
	assert.False(t, poly.Manual)

	cur, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, poly, cur)
}

func TestDetectDoesNotOverrideManualRing(t *testing.T) {
	m := NewModel(fixedDetector{poly: types.BoundaryPolygon{Ring: bowtie()}}, false)

	manual, err := m.SetManual(square())
	require.NoError(t, err)

	got, err := m.Detect(context.Background(), types.Location{}, types.ImageAsset{})
	require.NoError(t, err)
	assert.Equal(t, manual, got, "manual rings are authoritative")
}

func TestDetectReturnsManualRingWithoutDetector(t *testing.T) {
	m := NewModel(nil, false)

	manual, err := m.SetManual(square())
	require.NoError(t, err)

	got, err := m.Detect(context.Background(), types.Location{}, types.ImageAsset{})
	require.NoError(t, err)
	assert.Equal(t, manual, got, "a drawn ring must survive detection being unconfigured")
}

func TestDetectErrorsWithoutDetectorOrManualRing(t *testing.T) {
	m := NewModel(nil, false)

	_, err := m.Detect(context.Background(), types.Location{}, types.ImageAsset{})
	assert.ErrorIs(t, err, types.ErrInvalidBoundary)
}

func TestHistoryRetainedWhenRequested(t *testing.T) {
	m := NewModel(nil, true)

	first, err := m.SetManual(square())
	require.NoError(t, err)

	shifted := square()
	for i := range shifted {
		shifted[i].Lat += 0.5
	}
	_, err = m.SetManual(shifted)
	require.NoError(t, err)

	hist := m.History()
	require.Len(t, hist, 1)
	assert.Equal(t, first, hist[0])
}

func TestProjectCenterLandsMidViewport(t *testing.T) {
	vp := Viewport{
		Center: types.Geocoordinate{Lat: 37.33, Lng: -122.03},
		Zoom:   18,
		Width:  640,
		Height: 640,
	}
	x, y := Project(vp.Center, vp)
	assert.InDelta(t, 320, x, 1e-6)
	assert.InDelta(t, 320, y, 1e-6)
}

func TestProjectDirectionality(t *testing.T) {
	vp := Viewport{
		Center: types.Geocoordinate{Lat: 37.33, Lng: -122.03},
		Zoom:   18,
		Width:  640,
		Height: 640,
	}
	// East of center lands right of center, north lands above.
	x, _ := Project(types.Geocoordinate{Lat: 37.33, Lng: -122.029}, vp)
	assert.Greater(t, x, 320.0)

	_, y := Project(types.Geocoordinate{Lat: 37.331, Lng: -122.03}, vp)
	assert.Less(t, y, 320.0)
}

func TestProjectScalesWithZoom(t *testing.T) {
	target := types.Geocoordinate{Lat: 37.33, Lng: -122.029}
	center := types.Geocoordinate{Lat: 37.33, Lng: -122.03}

	vp17 := Viewport{Center: center, Zoom: 17, Width: 640, Height: 640}
	vp18 := Viewport{Center: center, Zoom: 18, Width: 640, Height: 640}

	x17, _ := Project(target, vp17)
	x18, _ := Project(target, vp18)
	assert.InDelta(t, (x18-320)/2, x17-320, 1e-6, "one zoom level doubles the pixel offset")
}
