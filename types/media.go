package types

// SourceKind says where an image came from.
type SourceKind string

const (
	SourceSatellite SourceKind = "satellite"
	SourceStreet    SourceKind = "street"
	SourceUser      SourceKind = "user"
)

// Role is how an image is used in the video.
type Role string

const (
	RoleAerial   Role = "aerial"
	RoleStreet   Role = "street"
	RoleInterior Role = "interior"
	RoleExterior Role = "exterior"
)

// CaptureParams are the provider parameters a fetched tile was requested
// with. User uploads carry the zero value.
type CaptureParams struct {
	Zoom    int     `json:"zoom"`
	Heading float64 `json:"heading"`
	Pitch   float64 `json:"pitch"`
	FOV     float64 `json:"fov"`
}

// ImageAsset is one picture in the media set. Content is immutable after
// construction; only ordering index and role tag may change, and only
// through the media set.
type ImageAsset struct {
	ID          string        `json:"id"`
	Fingerprint string        `json:"fingerprint"`
	Pixels      []byte        `json:"-"` // encoded raster bytes (jpeg/png)
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Source      SourceKind    `json:"source"`
	Role        Role          `json:"role"`
	Params      CaptureParams `json:"params"`
	// Center is the coordinate a fetched tile was centered on. Zero for
	// user uploads.
	Center Geocoordinate `json:"center"`
	// DurationHint is a caller preference in seconds, 0 means no preference.
	DurationHint float64 `json:"durationHint"`
}
