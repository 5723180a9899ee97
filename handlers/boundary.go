package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-homereel/types"
)

// SetBoundary commits a user-drawn property boundary for a session.
// Manual rings take precedence over anything detection produces later.
func SetBoundary(c *gin.Context, sessions *SessionStore) {
	var request struct {
		Session string                `json:"session"`
		Ring    []types.Geocoordinate `json:"ring"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := sessions.GetOrCreate(request.Session)
	poly, err := sess.Boundary.SetManual(request.Ring)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":  sess.ID,
		"boundary": poly,
		"vertices": poly.VertexCount(),
	})
}
