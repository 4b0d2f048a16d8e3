package helpers

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces a client supplied filename to a flat ASCII name that
// is safe to use as a storage key. The result may be empty.
func SecureFilename(filename string) string {
	decomposed := norm.NFKD.String(filename)

	var b strings.Builder
	for _, r := range decomposed {
		if r > unicode.MaxASCII {
			continue
		}
		switch r {
		case '/', '\\':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	name := strings.Join(strings.Fields(b.String()), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// Extension returns the lower-cased text after the last dot. A name without
// a dot is its own extension.
func Extension(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		filename = filename[i+1:]
	}
	return strings.ToLower(filename)
}
