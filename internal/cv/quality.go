package cv

import (
	"regexp"
	"strings"
	"unicode"
)

// Thresholds for accepting structured PDF text as prose.
const (
	minAlphaChars      = 20
	minAlphaRatio      = 0.3
	minWhitespaceRatio = 0.05

	maxSlashTokenRatio  = 0.2
	maxStructureMarkers = 3
)

// structureMarkers are PDF object-syntax tokens that leak into broken text layers.
var structureMarkers = map[string]struct{}{
	"/Type": {}, "/Font": {}, "/FontDescriptor": {}, "/Resources": {}, "/Filter": {},
	"/FlateDecode": {}, "/Length": {}, "/XObject": {}, "/ProcSet": {}, "/MediaBox": {},
	"/Subtype": {}, "/BaseFont": {},
	"endobj": {}, "endstream": {}, "stream": {}, "xref": {}, "obj": {},
}

var objectRefPattern = regexp.MustCompile(`\b\d+ \d+ (?:R|obj)\b`)

// IsMeaningful reports whether text has enough letters, in a high enough
// proportion, and enough whitespace to be read as words.
func IsMeaningful(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	var total, alpha, space int
	for _, r := range text {
		total++
		switch {
		case unicode.IsLetter(r):
			alpha++
		case unicode.IsSpace(r):
			space++
		}
	}
	if alpha < minAlphaChars {
		return false
	}
	return float64(alpha)/float64(total) >= minAlphaRatio &&
		float64(space)/float64(total) >= minWhitespaceRatio
}

// IsMetadataNoise reports whether text looks like leaked PDF object syntax
// rather than page content.
func IsMetadataNoise(text string) bool {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return false
	}

	var slashes, markers int
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "/") {
			slashes++
		}
		if _, ok := structureMarkers[tok]; ok {
			markers++
		}
	}
	if float64(slashes)/float64(len(tokens)) > maxSlashTokenRatio {
		return true
	}
	if markers >= maxStructureMarkers {
		return true
	}
	return objectRefPattern.MatchString(text)
}
