package routes

import (
	"log/slog"
	"photo-board/controllers"
	"photo-board/handlers"
	"photo-board/middleware"
	"photo-board/models"
	"photo-board/services"
	"photo-board/templates"

	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	Config    models.Config
	Service   *services.MessageService
	Formatter templates.Formatter
	Log       *slog.Logger
}

func PhotoBoardRouter(r *gin.Engine, d Dependencies) {
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log))

	if d.Config.BlobDriver == models.BlobDriverDisk {
		r.Static(models.UploadsRoute, d.Config.UploadDir)
	}

	r.GET("/", handlers.Greeter)
	r.GET("/messages", handlers.Messages(d.Service, d.Formatter, d.Config.RecentLimit, d.Log))
	r.POST("/post", middleware.MaxBodySize(d.Config.MaxUploadSize), controllers.PostMessage(d.Service, d.Formatter, d.Log))
}
