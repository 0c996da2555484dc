package cv

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var ligatures = strings.NewReplacer(
	"ﬀ", "ff",
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"ﬅ", "st",
	"ﬆ", "st",
	"Œ", "OE",
	"œ", "oe",
	"Æ", "AE",
	"æ", "ae",
)

// Sanitize normalizes extracted text: non-printable characters are dropped,
// NFKC applied, ligatures expanded and whitespace runs collapsed to one space.
// Sanitize(Sanitize(s)) == Sanitize(s).
//
// NFKC can itself produce ligatures (U+1D2D becomes Æ), so expansion runs
// after it. The expanded letters may then compose with a following combining
// mark, which the second NFKC pass settles.
func Sanitize(text string) string {
	text = strings.ToValidUTF8(text, "")
	text = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsPrint(r) {
			return r
		}
		return -1
	}, text)
	text = norm.NFKC.String(text)
	text = ligatures.Replace(text)
	text = norm.NFKC.String(text)
	return strings.Join(strings.Fields(text), " ")
}
