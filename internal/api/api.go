// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/avoronov/miniogate/internal/api/handlers"
	"github.com/avoronov/miniogate/internal/api/middleware"
)

func NewRouter(fileService handlers.FileService, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
	if allowAll || len(normalizedOrigins) == 0 {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		corsConfig.AllowOrigins = normalizedOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	fileHandler := handlers.NewFileHandler(fileService)
	filesGroup := router.Group("/files")
	{
		filesGroup.POST("/upload", fileHandler.Upload)
		filesGroup.POST("/upload/batch", fileHandler.UploadBatch)
		filesGroup.GET("/download/:fileName", fileHandler.Download)
		filesGroup.POST("/download/batch", fileHandler.DownloadBatch)
		filesGroup.GET("/download/folder/:folderPath", fileHandler.DownloadFolder)
		filesGroup.DELETE("/folder/by-file-id/:fileId", fileHandler.DeleteFolderByFileID)
		filesGroup.DELETE("/folder/:folderPath", fileHandler.DeleteFolder)
		filesGroup.DELETE("/:id", fileHandler.DeleteFile)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
