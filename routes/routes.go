package routes

import (
	"github.com/gin-gonic/gin"

	"go-homereel/geocode"
	"go-homereel/handlers"
	"go-homereel/pipeline"
)

func SetupRouter(p *pipeline.Pipeline, resolver *geocode.Resolver, sessions *handlers.SessionStore) *gin.Engine {
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Hello, welcome to HomeReel!",
		})
	})

	// api routes, with the pipeline and stores injected
	api := r.Group("/api/homereel")
	{
		api.POST("/videos", func(c *gin.Context) {
			handlers.CreateVideo(c, p, sessions)
		})
		api.POST("/uploads", func(c *gin.Context) {
			handlers.UploadPhotos(c, sessions)
		})
		api.POST("/reorder", func(c *gin.Context) {
			handlers.ReorderPhotos(c, sessions)
		})
		api.POST("/boundary", func(c *gin.Context) {
			handlers.SetBoundary(c, sessions)
		})
		api.GET("/geocode", func(c *gin.Context) {
			handlers.TestGeocode(c, resolver)
		})
		api.POST("/timeline", func(c *gin.Context) {
			handlers.PreviewTimeline(c, sessions)
		})
	}

	return r
}
