package http

import (
	"github.com/gin-gonic/gin"

	"transcription-service/ddd/application/app"
	"transcription-service/ddd/infrastructure/worker"
)

// Router wires the HTTP surface consumed by the external UI.
type Router struct {
	transcriptionApp app.TranscriptionApp
	dispatcher       *worker.Dispatcher
}

func NewRouter(transcriptionApp app.TranscriptionApp, dispatcher *worker.Dispatcher) *Router {
	return &Router{
		transcriptionApp: transcriptionApp,
		dispatcher:       dispatcher,
	}
}

// SetupRoutes registers all endpoints.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	mediaController := NewMediaController(r.transcriptionApp)

	v1 := engine.Group("/api/v1")
	{
		media := v1.Group("/media")
		{
			media.POST("", mediaController.CreateMedia)
			media.GET("/:media_uuid", mediaController.GetMedia)
			media.POST("/:media_uuid/transcriptions", mediaController.SubmitTranscription)
		}
	}

	engine.GET("/health", func(c *gin.Context) {
		stats := r.dispatcher.GetStats()
		c.JSON(200, gin.H{
			"status":          "ok",
			"service":         "transcription-service",
			"workers_running": r.dispatcher.IsRunning(),
			"processed_jobs":  stats.ProcessedJobs,
			"failed_jobs":     stats.FailedJobs,
		})
	})
}

// SetupMiddleware installs the shared middleware stack.
func (r *Router) SetupMiddleware(engine *gin.Engine) {
	engine.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())
}
