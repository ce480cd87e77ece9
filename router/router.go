package router

import (
	"time"

	"fintrack/api"
	"fintrack/config"
	"fintrack/database"
	_ "fintrack/docs"
	"fintrack/middleware"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Services everything the handlers call into, sharing one store
type Services struct {
	Records   *service.RecordService
	Settings  *service.SettingsService
	Images    *service.ImageService
	Analytics *service.AnalyticsService
	Export    *service.ExportService
}

// NewServices builds the services on top of store
func NewServices(cfg *config.Config, store *database.Store) *Services {
	return &Services{
		Records:   service.NewRecordService(store),
		Settings:  service.NewSettingsService(store),
		Images:    service.NewImageService(store),
		Analytics: service.NewAnalyticsService(store),
		Export:    service.NewExportService(store, cfg.Export.Dir),
	}
}

// SetupRouter wires routes
func SetupRouter(cfg *config.Config, svc *Services) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()
	r.Use(CORSMiddleware())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	apiGroup := r.Group("/api")
	{
		authHandler := api.NewAuthHandler(cfg, svc.Settings)
		auth := apiGroup.Group("/auth")
		{
			auth.GET("/first-run", authHandler.FirstRun)
			auth.GET("/profile", authHandler.Profile)
			auth.POST("/verify", middleware.UnlockRateLimit(cfg.Auth.UnlockAttempts, time.Minute), authHandler.Verify)
		}

		// open until setup is done, then a session is required
		authorized := apiGroup.Group("")
		authorized.Use(middleware.SessionAuth(svc.Settings.IsFirstRun))
		{
			authorized.POST("/auth/setup", authHandler.Setup)

			imageHandler := api.NewImageHandler(svc.Images)
			images := authorized.Group("/images")
			{
				images.POST("", imageHandler.Upload)
				images.GET("/:key", imageHandler.Get)
				images.DELETE("/:key", imageHandler.Delete)
			}

			recordHandler := api.NewRecordHandler(svc.Records)
			db := authorized.Group("/db")
			{
				db.GET("/:kind", recordHandler.List)
				db.POST("/:kind", recordHandler.Insert)
				db.GET("/:kind/:id", recordHandler.Get)
				db.PUT("/:kind/:id", recordHandler.Update)
				db.DELETE("/:kind/:id", recordHandler.Delete)
			}

			settingsHandler := api.NewSettingsHandler(svc.Settings)
			authorized.GET("/settings", settingsHandler.Get)
			authorized.PUT("/settings", settingsHandler.Update)

			statsHandler := api.NewStatsHandler(svc.Analytics)
			stats := authorized.Group("/stats")
			{
				stats.GET("/dashboard", statsHandler.Dashboard)
				stats.GET("/history", statsHandler.History)
				stats.GET("/predictions", statsHandler.Predictions)
			}

			exportHandler := api.NewExportHandler(svc.Export, svc.Analytics)
			export := authorized.Group("/export")
			{
				export.POST("/csv", exportHandler.WriteCSV)
				export.GET("/:file", exportHandler.Download)
			}
		}
	}

	return r
}

// CORSMiddleware CORS headers for the UI shell
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
