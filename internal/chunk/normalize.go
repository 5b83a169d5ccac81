package chunk

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes text for indexing and querying: lower-case,
// whitespace collapsed to single spaces, and every character outside
// word characters, dots, and hyphens stripped.
//
// The lexical index applies this at ingest time and again at query time.
// The two sides must stay byte-identical; a one-sided change silently
// drops relevance to near zero because query terms stop matching corpus
// terms.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	space := true // collapse leading whitespace too
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-':
			b.WriteRune(r)
			space = false
		case unicode.IsSpace(r):
			if !space {
				b.WriteByte(' ')
				space = true
			}
		default:
			// Stripped outright, not replaced by a space.
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Tokens normalizes text and splits it into index terms.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}
