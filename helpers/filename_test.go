package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"Plain", "photo.png", "photo.png"},
		{"Spaces", "my summer photo.jpg", "my_summer_photo.jpg"},
		{"Path traversal", "../../etc/passwd.png", "etc_passwd.png"},
		{"Windows path", `C:\Users\ann\cat.gif`, "C_Users_ann_cat.gif"},
		{"Accents", "café.jpeg", "cafe.jpeg"},
		{"Only non ascii", "写真.png", "png"},
		{"Unsafe chars", "a<b>c;d.png", "abcd.png"},
		{"Leading dots", "...hidden.png", "hidden.png"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SecureFilename(tt.filename))
		})
	}
}

func TestExtension(t *testing.T) {
	req := require.New(t)
	req.Equal("png", Extension("photo.PNG"))
	req.Equal("gz", Extension("archive.tar.gz"))
	req.Equal("", Extension("trailing."))
	req.Equal("png", Extension("png"))
}

func TestGenerateID_IsUnique(t *testing.T) {
	req := require.New(t)
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := GenerateID()
		req.Len(id, 36)
		_, dup := seen[id]
		req.False(dup)
		seen[id] = struct{}{}
	}
}
