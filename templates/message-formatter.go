package templates

import (
	"html/template"
	"photo-board/models"
	"strings"
	"time"
	_ "time/tzdata"
)

const TimestampLayout = "2006/01/02 15:04:05"

// Localize renders a stored UTC timestamp in the display zone.
func Localize(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(TimestampLayout)
}

// EscapeAndBreak HTML-escapes text and turns every newline into <br>. The
// result can be written into a page as is.
func EscapeAndBreak(text string) string {
	return strings.ReplaceAll(template.HTMLEscapeString(text), "\n", "<br>")
}

// MessageView is a Message prepared for display. Body is already escaped.
type MessageView struct {
	Name      string
	Timestamp string
	Body      string
	ImageURL  string
}

type Formatter struct {
	loc      *time.Location
	basePath string
}

func NewFormatter(loc *time.Location, storageBasePath string) Formatter {
	return Formatter{loc: loc, basePath: strings.TrimSuffix(storageBasePath, "/")}
}

func (f Formatter) Localize(t time.Time) string {
	return Localize(t, f.loc)
}

func (f Formatter) ImageURL(imageRef string) string {
	return f.basePath + "/" + imageRef
}

func (f Formatter) View(m models.Message) MessageView {
	view := MessageView{
		Name:      m.Name,
		Timestamp: f.Localize(m.Timestamp),
		Body:      EscapeAndBreak(m.Text),
	}
	if m.HasImage() {
		view.ImageURL = f.ImageURL(m.ImageRef)
	}
	return view
}
