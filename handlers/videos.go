package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-homereel/pipeline"
	"go-homereel/types"
)

// CreateVideo runs the full address-to-video pipeline for a listing.
// Photos and a manual boundary uploaded earlier under the same session
// id are picked up automatically.
func CreateVideo(c *gin.Context, p *pipeline.Pipeline, sessions *SessionStore) {
	var request struct {
		Session        string              `json:"session"`
		Facts          types.PropertyFacts `json:"facts"`
		Language       string              `json:"language"`
		Tone           string              `json:"tone"`
		Voice          string              `json:"voice"`
		Preset         string              `json:"preset"`
		Resolution     string              `json:"resolution"`
		Branding       string              `json:"branding"`
		TimeoutSeconds int                 `json:"timeoutSeconds"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Facts.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "facts.address is required"})
		return
	}

	sess := sessions.GetOrCreate(request.Session)

	spec := specForResolution(request.Resolution)
	spec.BrandingText = request.Branding

	// Session photos feed the run; the manual boundary (if drawn) wins
	// over detection because the session model is authoritative.
	var photos []pipeline.Photo
	for _, asset := range sess.Media.List() {
		photos = append(photos, pipeline.Photo{Data: asset.Pixels, Role: asset.Role})
	}

	run := *p
	run.Boundary = sess.Boundary

	req := pipeline.Request{
		Facts:    request.Facts,
		Photos:   photos,
		Language: request.Language,
		Tone:     request.Tone,
		Voice:    request.Voice,
		Preset:   request.Preset,
		Spec:     spec,
		Timeout:  time.Duration(request.TimeoutSeconds) * time.Second,
	}

	res, err := run.Run(c.Request.Context(), req)
	if err != nil {
		log.Printf("video run for %q failed: %v", request.Facts.Address, err)
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":   sess.ID,
		"record":    res.Record,
		"artifact":  res.Artifact,
		"location":  res.Location,
		"script":    res.Script,
		"narration": res.Narration,
	})
}

// statusForError maps the pipeline error taxonomy onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, types.ErrLocationUnresolved),
		errors.Is(err, types.ErrInvalidBoundary),
		errors.Is(err, types.ErrNarrationMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrPipelineTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, types.ErrImageryUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// specForResolution picks an output spec by name, defaulting to 1080p.
func specForResolution(name string) types.RenderSpec {
	switch name {
	case "720p":
		return types.Spec720p
	case "vertical":
		return types.SpecVertical
	default:
		return types.Spec1080p
	}
}
