package assets

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, drops combining marks, and recomposes, so
// dotted Igbo vowels (ọ ụ ị) and ṅ fold to plain ASCII letters.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug converts a dictionary word into the filesystem-safe token used to name
// its stored audio file. Diacritics are folded, letters lowercased, and any
// run of other characters collapses into a single hyphen.
func Slug(word string) string {
	folded, _, err := transform.String(stripMarks, strings.TrimSpace(word))
	if err != nil {
		folded = strings.TrimSpace(word)
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}

	out := b.String()
	if out == "" {
		return "entry"
	}
	return out
}
