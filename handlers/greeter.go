package handlers

import (
	"photo-board/templates"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

func Greeter(c *gin.Context) {
	component := templates.Index()
	handler := templ.Handler(component)
	handler.ServeHTTP(c.Writer, c.Request)
}
