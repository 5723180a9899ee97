package types

// NarrationSegment is one sentence/segment of the script aligned to the
// synthesized audio track. Times are seconds from the start of the audio.
type NarrationSegment struct {
	Text        string  `json:"text"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	AudioOffset float64 `json:"audioOffset"`
}

// Duration returns the segment length in seconds.
func (s NarrationSegment) Duration() float64 {
	return s.End - s.Start
}

// SegmentKind distinguishes the timeline segment variants.
type SegmentKind string

const (
	SegmentImageryClip     SegmentKind = "imagery-clip"
	SegmentBoundaryOverlay SegmentKind = "boundary-overlay"
	SegmentTextOverlay     SegmentKind = "text-overlay"
	SegmentTransition      SegmentKind = "transition"
)

// Motion descriptors for primary segments (Ken Burns style).
type Motion string

const (
	MotionZoomIn   Motion = "zoom-in"
	MotionZoomOut  Motion = "zoom-out"
	MotionPanLeft  Motion = "pan-left"
	MotionPanRight Motion = "pan-right"
	MotionStatic   Motion = "static"
)

// Transition names. These are what the style presets pick from.
type Transition string

const (
	TransitionFade  Transition = "fade"
	TransitionSlide Transition = "slide"
	TransitionZoom  Transition = "zoom"
	TransitionWipe  Transition = "wipe"
)

// TimelineSegment is one entry on the timeline. Primary segments
// (imagery-clip, boundary-overlay) tile the narration duration; text
// overlays and transitions sit on top of / between them.
type TimelineSegment struct {
	Kind     SegmentKind `json:"kind"`
	Start    float64     `json:"start"`
	Duration float64     `json:"duration"`
	// AssetIDs references media set assets for imagery/boundary segments.
	AssetIDs []string `json:"assetIds,omitempty"`
	// Text is the overlay text for text-overlay segments.
	Text string `json:"text,omitempty"`
	// Motion applies to primary segments.
	Motion Motion `json:"motion,omitempty"`
	// Transition applies to transition segments.
	Transition Transition `json:"transition,omitempty"`
}

// End returns the segment end time.
func (s TimelineSegment) End() float64 {
	return s.Start + s.Duration
}

// Timeline is the full edit: primary track plus overlays and transitions,
// and the audio it was built against.
type Timeline struct {
	Primary     []TimelineSegment `json:"primary"`
	Transitions []TimelineSegment `json:"transitions"`
	Overlays    []TimelineSegment `json:"overlays"`
	Preset      string            `json:"preset"`
	// Boundary is the polygon the boundary-overlay segment draws, when set.
	Boundary *BoundaryPolygon `json:"boundary,omitempty"`
	// TotalDuration equals the narration audio duration.
	TotalDuration float64 `json:"totalDuration"`
}
