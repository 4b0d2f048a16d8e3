package handlers

import (
	"log/slog"
	"net/http"
	"photo-board/models"
	"photo-board/services"
	"photo-board/templates"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// Messages renders the limit most recent messages, oldest first, and the
// submission form.
func Messages(service *services.MessageService, formatter templates.Formatter, limit int, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		messages, err := service.Recent(c.Request.Context(), limit)
		if err != nil {
			log.Error("Could not load messages", "error", err)
			component := templates.Failure("Messages are unavailable right now.")
			templ.Handler(component, templ.WithStatus(http.StatusInternalServerError)).ServeHTTP(c.Writer, c.Request)
			return
		}

		views := lo.Map(messages, func(m models.Message, _ int) templates.MessageView {
			return formatter.View(m)
		})
		handler := templ.Handler(templates.Messages(views))
		handler.ServeHTTP(c.Writer, c.Request)
	}
}
