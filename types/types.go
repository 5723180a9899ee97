package types

// Geocoordinate is a WGS-84 lat/lng pair in decimal degrees.
type Geocoordinate struct {
	Lat float64 `json:"lat" firestore:"lat"`
	Lng float64 `json:"lng" firestore:"lng"`
}

// Location is a resolved address. Immutable once produced by the resolver.
type Location struct {
	RawAddress       string        `json:"rawAddress" firestore:"rawAddress"`
	FormattedAddress string        `json:"formattedAddress" firestore:"formattedAddress"`
	Coordinate       Geocoordinate `json:"coordinate" firestore:"coordinate"`
	Confidence       float64       `json:"confidence" firestore:"confidence"`
	PlaceID          string        `json:"placeId" firestore:"placeId"`
	PlaceType        string        `json:"placeType" firestore:"placeType"`
}

// NearbyPlace is a point of interest around a resolved location, used to
// enrich the script prompt.
type NearbyPlace struct {
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	DistanceMeters int     `json:"distance"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
}

// PropertyFacts is everything the caller tells us about the listing.
type PropertyFacts struct {
	Address         string  `json:"address"`
	PropertyType    string  `json:"propertyType"`
	Rooms           int     `json:"rooms"`
	Bathrooms       int     `json:"bathrooms"`
	AreaSqMeters    float64 `json:"areaSqMeters"`
	Price           int64   `json:"price"`
	Currency        string  `json:"currency"`
	YearBuilt       int     `json:"yearBuilt"`
	SpecialFeatures string  `json:"specialFeatures"`
	Description     string  `json:"description"`
}

// RenderSpec describes one requested output. It never mutates the timeline.
type RenderSpec struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FPS          int    `json:"fps"`
	Format       string `json:"format"`       // container, e.g. "mp4"
	BrandingText string `json:"brandingText"` // agency name shown in the corner
	OutputPath   string `json:"outputPath"`   // empty means the renderer picks one
}

// Standard output sizes.
var (
	Spec1080p = RenderSpec{Width: 1920, Height: 1080, FPS: 30, Format: "mp4"}
	Spec720p  = RenderSpec{Width: 1280, Height: 720, FPS: 30, Format: "mp4"}
	// Vertical cut for shorts/reels.
	SpecVertical = RenderSpec{Width: 1080, Height: 1920, FPS: 30, Format: "mp4"}
)

// Artifact is the handle returned for a finished render.
type Artifact struct {
	Path     string  `json:"path" firestore:"path"`
	Duration float64 `json:"duration" firestore:"duration"` // seconds
	Width    int     `json:"width" firestore:"width"`
	Height   int     `json:"height" firestore:"height"`
	Checksum string  `json:"checksum" firestore:"checksum"` // sha256 of the container bytes
}

// RenderRecord is what we persist per finished render.
type RenderRecord struct {
	ID          string   `firestore:"-" json:"id"`
	Address     string   `firestore:"address" json:"address"`
	Fingerprint string   `firestore:"fingerprint" json:"fingerprint"`
	Artifact    Artifact `firestore:"artifact" json:"artifact"`
	Preset      string   `firestore:"preset" json:"preset"`
	CreatedAt   string   `firestore:"createdAt" json:"createdAt"` // RFC3339
}
