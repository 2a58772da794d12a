package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/api/handlers"
	"github.com/yourusername/mediagrab-go/api/middleware"
	"github.com/yourusername/mediagrab-go/internal/app"
	"github.com/yourusername/mediagrab-go/internal/domain"
)

// SetupRouter sets up the HTTP router
func SetupRouter(
	catalog *app.CatalogService,
	launcher *app.Launcher,
	registry domain.TaskRegistry,
	tasks handlers.TaskCounter,
	log *zap.Logger,
) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())

	// Health endpoint
	healthHandler := handlers.NewHealthHandler(tasks)
	router.GET("/health", healthHandler.Health)

	// Catalog and download endpoints
	formatHandler := handlers.NewFormatHandler(catalog, log)
	downloadHandler := handlers.NewDownloadHandler(launcher, log)
	taskHandler := handlers.NewTaskHandler(registry, log)
	wsHandler := handlers.NewProgressWebSocketHandler(registry, log)

	router.POST("/get_formats", formatHandler.GetFormats)
	router.POST("/download", downloadHandler.StartDownload)
	router.GET("/progress/:task_id", taskHandler.Progress)
	router.GET("/progress/:task_id/ws", wsHandler.Stream)
	router.GET("/file/:task_id", taskHandler.File)

	return router
}
