package models

import (
	"io"
	"time"
)

// Message is a single board entry. It is created once and never updated.
type Message struct {
	ID        string
	Timestamp time.Time
	Name      string
	Text      string
	ImageRef  string
}

func (m Message) HasImage() bool {
	return m.ImageRef != ""
}

// Submission holds the raw form fields of a POST /post request.
type Submission struct {
	Name  string
	Text  string
	Photo *Photo
}

// Photo is an attached file. Open is called once the submission is valid.
type Photo struct {
	Filename string
	Size     int64
	Open     func() (io.ReadSeekCloser, error)
}
