package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-homereel/geocode"
)

// TestGeocode previews how an address resolves, without running the
// pipeline. Useful for checking what the geocoder makes of a listing
// address before committing to a render.
func TestGeocode(c *gin.Context, resolver *geocode.Resolver) {
	locationParam := c.Query("location")
	if locationParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location query parameter required"})
		return
	}

	// JSON response struct
	type LocationResponse struct {
		Location   string  `json:"location"`
		Formatted  string  `json:"formatted"`
		Longitude  float64 `json:"longitude"`
		Latitude   float64 `json:"latitude"`
		Confidence float64 `json:"confidence"`
		PlaceType  string  `json:"placeType"`
	}

	loc, err := resolver.Resolve(c.Request.Context(), locationParam)
	if err != nil {
		log.Printf("geocode preview: %v", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, LocationResponse{
		Location:   locationParam,
		Formatted:  loc.FormattedAddress,
		Longitude:  loc.Coordinate.Lng,
		Latitude:   loc.Coordinate.Lat,
		Confidence: loc.Confidence,
		PlaceType:  loc.PlaceType,
	})
}
