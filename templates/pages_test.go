package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessages_RendersInOrderWithEscaping(t *testing.T) {
	req := require.New(t)
	views := []MessageView{
		{Name: "<Ann>", Timestamp: "2024/01/01 09:00:00", Body: EscapeAndBreak("first\nline")},
		{Name: "Cy", Timestamp: "2024/01/01 09:01:00", Body: "pic", ImageURL: "/uploads/abc.photo.png"},
	}

	var buf strings.Builder
	req.NoError(Messages(views).Render(context.Background(), &buf))
	html := buf.String()

	req.Contains(html, "&lt;Ann&gt;")
	req.NotContains(html, "<Ann>")
	req.Contains(html, "first<br>line")
	req.Contains(html, `src="/uploads/abc.photo.png"`)
	req.Less(strings.Index(html, "&lt;Ann&gt;"), strings.Index(html, "Cy"))
	req.Contains(html, `name="input_photo"`)
	req.Equal(1, strings.Count(html, "<img"))
}

func TestPosted(t *testing.T) {
	req := require.New(t)
	var buf strings.Builder
	req.NoError(Posted("Ann", "2024/01/01 09:00:00").Render(context.Background(), &buf))
	req.Contains(buf.String(), "Ann")
	req.Contains(buf.String(), "2024/01/01 09:00:00")
}
