package timeline

import (
	"fmt"
	"math"

	"go-homereel/types"
)

// Titles are the text overlays burned into the video.
type Titles struct {
	Address  string
	Price    string
	Branding string
}

// BuildInput is everything the compositor needs. Assets come in media-set
// order; Boundary may be nil.
type BuildInput struct {
	Assets    []types.ImageAsset
	Boundary  *types.BoundaryPolygon
	Narration []types.NarrationSegment
	Preset    string
	Titles    Titles
}

const (
	addressOverlaySeconds = 4.0
	priceOverlaySeconds   = 5.0
)

// Build assembles the timeline: one primary segment per narration
// segment in media-set order (cycling assets when narration outruns
// them), transitions between adjacent primaries, a single boundary
// overlay on the first aerial segment, and text overlays on absolute
// time ranges. Deterministic for identical inputs.
func Build(in BuildInput) (types.Timeline, error) {
	if len(in.Narration) == 0 {
		return types.Timeline{}, types.NewStageError("timeline", in.Preset,
			fmt.Errorf("%w: no narration segments", types.ErrNarrationMismatch))
	}
	if len(in.Assets) == 0 {
		return types.Timeline{}, types.NewStageError("timeline", in.Preset,
			fmt.Errorf("no assets to schedule"))
	}

	preset := PresetByName(in.Preset)
	total := in.Narration[len(in.Narration)-1].End

	// Primary track: one clip per narration segment. When narration
	// outnumbers assets we cycle from the start rather than fail; the
	// video gets repetitive but always renders.
	primary := make([]types.TimelineSegment, len(in.Narration))
	for i, ns := range in.Narration {
		asset := in.Assets[i%len(in.Assets)]
		primary[i] = types.TimelineSegment{
			Kind:     types.SegmentImageryClip,
			Start:    ns.Start,
			Duration: ns.Duration(),
			AssetIDs: []string{asset.ID},
			Motion:   preset.MotionFor(i),
		}
	}

	// Rounding from narration math lands on the last segment so the
	// primary track sums to the narration total exactly.
	var sum float64
	for _, seg := range primary[:len(primary)-1] {
		sum += seg.Duration
	}
	primary[len(primary)-1].Duration = total - sum

	// The boundary outline draws in once, over the first aerial clip.
	var boundary *types.BoundaryPolygon
	if in.Boundary != nil && in.Boundary.VertexCount() >= 3 {
		boundary = in.Boundary
		idx := firstAerial(in.Assets, len(in.Narration))
		primary[idx].Kind = types.SegmentBoundaryOverlay
	}

	transitions := make([]types.TimelineSegment, 0, len(primary)-1)
	for i := 0; i < len(primary)-1; i++ {
		dur := math.Min(preset.TransitionSeconds, primary[i].Duration)
		transitions = append(transitions, types.TimelineSegment{
			Kind:       types.SegmentTransition,
			Start:      primary[i].End() - dur/2,
			Duration:   dur,
			Transition: preset.TransitionFor(i),
		})
	}

	overlays := buildOverlays(in.Titles, total)

	tl := types.Timeline{
		Primary:       primary,
		Transitions:   transitions,
		Overlays:      overlays,
		Preset:        preset.Name,
		Boundary:      boundary,
		TotalDuration: total,
	}
	if err := checkPrimaryTrack(tl); err != nil {
		return types.Timeline{}, err
	}
	return tl, nil
}

// firstAerial returns the primary index whose asset is the first aerial
// one, falling back to 0.
func firstAerial(assets []types.ImageAsset, primaries int) int {
	for i := 0; i < primaries; i++ {
		if assets[i%len(assets)].Role == types.RoleAerial {
			return i
		}
	}
	return 0
}

// Text overlays anchor to absolute time ranges, independent of primary
// segments, so they can span transitions.
func buildOverlays(titles Titles, total float64) []types.TimelineSegment {
	var overlays []types.TimelineSegment
	if titles.Address != "" {
		overlays = append(overlays, types.TimelineSegment{
			Kind:     types.SegmentTextOverlay,
			Start:    0,
			Duration: math.Min(addressOverlaySeconds, total),
			Text:     titles.Address,
		})
	}
	if titles.Price != "" {
		dur := math.Min(priceOverlaySeconds, total)
		overlays = append(overlays, types.TimelineSegment{
			Kind:     types.SegmentTextOverlay,
			Start:    total - dur,
			Duration: dur,
			Text:     titles.Price,
		})
	}
	if titles.Branding != "" {
		overlays = append(overlays, types.TimelineSegment{
			Kind:     types.SegmentTextOverlay,
			Start:    0,
			Duration: total,
			Text:     titles.Branding,
		})
	}
	return overlays
}

// checkPrimaryTrack enforces the tiling invariant before the timeline
// leaves the compositor.
func checkPrimaryTrack(tl types.Timeline) error {
	var sum float64
	cursor := 0.0
	for i, seg := range tl.Primary {
		if math.Abs(seg.Start-cursor) > 1e-9 {
			return fmt.Errorf("primary track gap/overlap at segment %d", i)
		}
		cursor = seg.End()
		sum += seg.Duration
	}
	if math.Abs(sum-tl.TotalDuration) > 1e-9 {
		return fmt.Errorf("primary track sums to %v, narration is %v", sum, tl.TotalDuration)
	}
	return nil
}
