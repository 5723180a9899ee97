package timeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-homereel/types"
)

func narrationOf(durations ...float64) []types.NarrationSegment {
	var out []types.NarrationSegment
	cursor := 0.0
	for i, d := range durations {
		out = append(out, types.NarrationSegment{
			Text:  fmt.Sprintf("segment %d", i),
			Start: cursor,
			End:   cursor + d,
		})
		cursor += d
	}
	return out
}

func assetsOf(n int) []types.ImageAsset {
	var out []types.ImageAsset
	for i := 0; i < n; i++ {
		role := types.RoleInterior
		if i == 0 {
			role = types.RoleAerial
		}
		out = append(out, types.ImageAsset{ID: fmt.Sprintf("asset-%d", i), Role: role})
	}
	return out
}

func TestBuildCountsAndDurations(t *testing.T) {
	tl, err := Build(BuildInput{
		Assets:    assetsOf(5),
		Narration: narrationOf(10, 20, 10),
		Preset:    PresetResidential,
	})
	require.NoError(t, err)

	assert.Len(t, tl.Primary, 3, "one primary per narration segment")
	assert.Len(t, tl.Transitions, 2, "N-1 transitions")
	assert.InDelta(t, 40, tl.TotalDuration, 1e-9)

	var sum float64
	for _, seg := range tl.Primary {
		sum += seg.Duration
	}
	assert.InDelta(t, 40, sum, 1e-9, "primary track sums to the narration total")
}

func TestBuildCyclesAssetsWhenNarrationOutnumbersThem(t *testing.T) {
	tl, err := Build(BuildInput{
		Assets:    assetsOf(2),
		Narration: narrationOf(5, 5, 5, 5, 5),
		Preset:    PresetResidential,
	})
	require.NoError(t, err)

	require.Len(t, tl.Primary, 5)
	assert.Equal(t, tl.Primary[0].AssetIDs, tl.Primary[2].AssetIDs)
	assert.Equal(t, tl.Primary[1].AssetIDs, tl.Primary[3].AssetIDs)
	assert.Equal(t, tl.Primary[0].AssetIDs, tl.Primary[4].AssetIDs)
}

func TestBuildIsDeterministic(t *testing.T) {
	in := BuildInput{
		Assets:    assetsOf(3),
		Narration: narrationOf(7, 9, 8, 6),
		Preset:    PresetCommercial,
		Titles:    Titles{Address: "1 Infinite Loop", Price: "$1,200,000"},
	}
	a, err := Build(in)
	require.NoError(t, err)
	b, err := Build(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildTransitionsRoundRobinFromPreset(t *testing.T) {
	tl, err := Build(BuildInput{
		Assets:    assetsOf(4),
		Narration: narrationOf(5, 5, 5, 5),
		Preset:    PresetCommercial,
	})
	require.NoError(t, err)

	require.Len(t, tl.Transitions, 3)
	assert.Equal(t, types.TransitionSlide, tl.Transitions[0].Transition)
	assert.Equal(t, types.TransitionWipe, tl.Transitions[1].Transition)
	assert.Equal(t, types.TransitionSlide, tl.Transitions[2].Transition)
}

func TestBuildBoundaryOverlayOnFirstAerial(t *testing.T) {
	assets := []types.ImageAsset{
		{ID: "street", Role: types.RoleStreet},
		{ID: "sat", Role: types.RoleAerial},
		{ID: "kitchen", Role: types.RoleInterior},
	}
	poly := &types.BoundaryPolygon{Ring: []types.Geocoordinate{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 0}}}

	tl, err := Build(BuildInput{
		Assets:    assets,
		Boundary:  poly,
		Narration: narrationOf(5, 5, 5),
		Preset:    PresetResidential,
	})
	require.NoError(t, err)

	var overlayIdx []int
	for i, seg := range tl.Primary {
		if seg.Kind == types.SegmentBoundaryOverlay {
			overlayIdx = append(overlayIdx, i)
		}
	}
	require.Len(t, overlayIdx, 1, "boundary overlay is scheduled exactly once")
	assert.Equal(t, 1, overlayIdx[0], "over the first aerial segment")
	assert.NotNil(t, tl.Boundary)
}

func TestBuildWithoutBoundaryHasOnlyImageryClips(t *testing.T) {
	tl, err := Build(BuildInput{
		Assets:    assetsOf(3),
		Narration: narrationOf(5, 5, 5),
		Preset:    PresetResidential,
	})
	require.NoError(t, err)

	for _, seg := range tl.Primary {
		assert.Equal(t, types.SegmentImageryClip, seg.Kind)
	}
	assert.Nil(t, tl.Boundary)
}

func TestBuildTextOverlaysAnchorToAbsoluteTime(t *testing.T) {
	tl, err := Build(BuildInput{
		Assets:    assetsOf(2),
		Narration: narrationOf(10, 10, 10),
		Preset:    PresetLuxury,
		Titles:    Titles{Address: "1 Infinite Loop", Price: "$2M", Branding: "HomeReel"},
	})
	require.NoError(t, err)

	require.Len(t, tl.Overlays, 3)
	address, price, branding := tl.Overlays[0], tl.Overlays[1], tl.Overlays[2]

	assert.Zero(t, address.Start)
	assert.InDelta(t, 4, address.Duration, 1e-9)
	assert.InDelta(t, 25, price.Start, 1e-9, "price runs over the final seconds")
	assert.InDelta(t, 30, branding.Duration, 1e-9, "branding spans the whole video")
}

func TestBuildRejectsEmptyInputs(t *testing.T) {
	_, err := Build(BuildInput{Assets: assetsOf(2), Preset: PresetResidential})
	assert.Error(t, err)

	_, err = Build(BuildInput{Narration: narrationOf(5), Preset: PresetResidential})
	assert.Error(t, err)
}

func TestPresetByNameFallsBack(t *testing.T) {
	assert.Equal(t, PresetResidential, PresetByName("no_such_preset").Name)
	assert.Equal(t, PresetLuxury, PresetByName(PresetLuxury).Name)
}

func TestEveryPresetNamesAMusicCategory(t *testing.T) {
	for name, p := range presets {
		assert.NotEmpty(t, p.Music, "preset %s has no music bed", name)
	}
	assert.Equal(t, "standard", PresetByName(PresetResidential).Music)
	assert.Equal(t, "elegant", PresetByName(PresetLuxury).Music)
	assert.Equal(t, "corporate", PresetByName(PresetCommercial).Music)
}
