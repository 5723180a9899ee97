package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-homereel/narration"
	"go-homereel/timeline"
)

// PreviewTimeline dry-runs the compositor over a session's current
// media set: the caller supplies the narration lines and a target
// duration, and gets the segment layout back without any provider
// calls or rendering.
func PreviewTimeline(c *gin.Context, sessions *SessionStore) {
	var request struct {
		Session  string   `json:"session"`
		Lines    []string `json:"lines"`
		Duration float64  `json:"duration"`
		Preset   string   `json:"preset"`
		Address  string   `json:"address"`
		Price    string   `json:"price"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := sessions.GetOrCreate(request.Session)

	segments, err := narration.Align(request.Lines, request.Duration)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	in := timeline.BuildInput{
		Assets:    sess.Media.List(),
		Narration: segments,
		Preset:    request.Preset,
		Titles:    timeline.Titles{Address: request.Address, Price: request.Price},
	}
	if poly, ok := sess.Boundary.Current(); ok {
		in.Boundary = &poly
	}

	tl, err := timeline.Build(in)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": sess.ID, "timeline": tl})
}
