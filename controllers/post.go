package controllers

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"photo-board/models"
	"photo-board/services"
	"photo-board/templates"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

const (
	uploadFailedReason  = "Your image could not be uploaded. Please try again."
	persistFailedReason = "Your message could not be saved. Please try again."
)

// PostMessage handles POST /post. Invalid input redirects to the message
// list; storage failures are shown to the user.
func PostMessage(service *services.MessageService, formatter templates.Formatter, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		submission := models.Submission{
			Name: c.PostForm("input_name"),
			Text: c.PostForm("input_message"),
		}

		file, err := c.FormFile("input_photo")
		switch {
		case err == nil:
			submission.Photo = photoFromFile(file)
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		default:
			log.Info("Unreadable upload", "error", err)
			c.Redirect(http.StatusFound, "/messages")
			return
		}

		msg, err := service.Submit(c.Request.Context(), submission)
		switch {
		case err == nil:
			component := templates.Posted(msg.Name, formatter.Localize(msg.Timestamp))
			templ.Handler(component).ServeHTTP(c.Writer, c.Request)
		case errors.Is(err, models.ErrValidation):
			c.Redirect(http.StatusFound, "/messages")
		case errors.Is(err, models.ErrUpload):
			fail(c, uploadFailedReason)
		default:
			fail(c, persistFailedReason)
		}
	}
}

func photoFromFile(file *multipart.FileHeader) *models.Photo {
	return &models.Photo{
		Filename: file.Filename,
		Size:     file.Size,
		Open: func() (io.ReadSeekCloser, error) {
			return file.Open()
		},
	}
}

func fail(c *gin.Context, reason string) {
	component := templates.Failure(reason)
	templ.Handler(component, templ.WithStatus(http.StatusInternalServerError)).ServeHTTP(c.Writer, c.Request)
}
