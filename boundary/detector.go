package boundary

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"go-homereel/types"
)

// Detector is the pluggable automatic-detection capability. The pipeline
// only cares about the contract; the detection itself (edge heuristics or
// a learned model) lives behind an endpoint.
type Detector interface {
	Detect(ctx context.Context, loc types.Location, hint types.ImageAsset) (types.BoundaryPolygon, error)
}

// RemoteDetector calls a hosted detection model with the satellite tile
// and the resolved coordinate, and gets back a ring with a confidence.
type RemoteDetector struct {
	url    string
	client *http.Client
}

// NewRemoteDetector points at a detection endpoint.
func NewRemoteDetector(url string) *RemoteDetector {
	return &RemoteDetector{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// DetectorFromEnv picks the detector implementation from configuration.
// No BOUNDARY_DETECTOR_URL means detection is disabled and only manual
// rings are available.
func DetectorFromEnv() Detector {
	if url := os.Getenv("BOUNDARY_DETECTOR_URL"); url != "" {
		return NewRemoteDetector(url)
	}
	return nil
}

type detectRequest struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Zoom      int     `json:"zoom"`
	ImageB64  string  `json:"image"`
	ImageSize [2]int  `json:"imageSize"`
}

type detectResponse struct {
	Ring       []types.Geocoordinate `json:"ring"`
	Confidence float64               `json:"confidence"`
}

func (d *RemoteDetector) Detect(ctx context.Context, loc types.Location, hint types.ImageAsset) (types.BoundaryPolygon, error) {
	payload := detectRequest{
		Lat:       loc.Coordinate.Lat,
		Lng:       loc.Coordinate.Lng,
		Zoom:      hint.Params.Zoom,
		ImageB64:  base64.StdEncoding.EncodeToString(hint.Pixels),
		ImageSize: [2]int{hint.Width, hint.Height},
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return types.BoundaryPolygon{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return types.BoundaryPolygon{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return types.BoundaryPolygon{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.BoundaryPolygon{}, errors.New("detector returned status: " + resp.Status)
	}

	var out detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return types.BoundaryPolygon{}, err
	}

	return types.BoundaryPolygon{Ring: out.Ring, Confidence: out.Confidence}, nil
}
