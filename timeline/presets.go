package timeline

import (
	"go-homereel/types"
)

// Style preset names. These mirror the listing templates the video styles
// come from.
const (
	PresetResidential = "residential_standard"
	PresetLuxury      = "luxury_residence"
	PresetCommercial  = "commercial_property"
)

// Preset drives transition and motion selection. Selection is a pure
// function of (preset, segment index, segment count), so the same inputs
// always produce the same timeline.
type Preset struct {
	Name        string
	Transitions []types.Transition
	Motions     []types.Motion
	// TransitionSeconds is how long each bridge between primaries runs.
	TransitionSeconds float64
	// Music is the background-bed category mixed under the narration.
	Music string
}

var presets = map[string]Preset{
	PresetResidential: {
		Name:              PresetResidential,
		Transitions:       []types.Transition{types.TransitionZoom, types.TransitionFade},
		Motions:           []types.Motion{types.MotionZoomIn, types.MotionZoomOut},
		TransitionSeconds: 0.5,
		Music:             "standard",
	},
	PresetLuxury: {
		Name:              PresetLuxury,
		Transitions:       []types.Transition{types.TransitionFade},
		Motions:           []types.Motion{types.MotionZoomIn, types.MotionPanRight, types.MotionZoomOut},
		TransitionSeconds: 0.8,
		Music:             "elegant",
	},
	PresetCommercial: {
		Name:              PresetCommercial,
		Transitions:       []types.Transition{types.TransitionSlide, types.TransitionWipe},
		Motions:           []types.Motion{types.MotionPanRight, types.MotionPanLeft},
		TransitionSeconds: 0.4,
		Music:             "corporate",
	},
}

// PresetByName returns the named preset, falling back to the residential
// default for unknown names.
func PresetByName(name string) Preset {
	if p, ok := presets[name]; ok {
		return p
	}
	return presets[PresetResidential]
}

// TransitionFor picks the bridge after primary segment i, round-robin.
func (p Preset) TransitionFor(i int) types.Transition {
	return p.Transitions[i%len(p.Transitions)]
}

// MotionFor picks the motion for primary segment i, round-robin.
func (p Preset) MotionFor(i int) types.Motion {
	return p.Motions[i%len(p.Motions)]
}
