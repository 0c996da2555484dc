package cv

import (
	"math/rand"
	"reflect"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"collapses whitespace", "  Jane \n\n Doe\t\tEngineer  ", "Jane Doe Engineer"},
		{"expands ligatures", "ﬁnance ofﬁce ﬂow Œuvre æsthetic", "finance office flow OEuvre aesthetic"},
		{"drops control characters", "Ja\x00ne​ Doe\x07", "Jane Doe"},
		{"compatibility forms", "Ｊａｎｅ　Ｄｏｅ ①", "Jane Doe 1"},
		{"non-breaking space", "Jane Doe", "Jane Doe"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	fixed := []string{
		"Hello, I am Jane Doe.\n\nContact: jane@example.com",
		"ﬃ ﬄ ﬅ ﬆ ¨ ́x é",
		"\x01\x02 tabs\tand\r\nnewlines ",
		"Ｆｕｌｌｗｉｄｔｈ ｶﾀｶﾅ ﾞ",
		"invalid \xc3\x28 utf8",
		"\u1d2d\u0301 ᴭx",
		"M^u\U00010783",
		"æ\u0323 Æ\u0301 œ\u0308",
		"e\u200d\u0301",
	}
	for _, in := range fixed {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
	}

	idempotent := func(s string) bool {
		once := Sanitize(s)
		return Sanitize(once) == once
	}
	cfg := &quick.Config{
		MaxCount: 20000,
		Rand:     rand.New(rand.NewSource(1)),
		Values:   func(args []reflect.Value, r *rand.Rand) {
			args[0] = reflect.ValueOf(randomText(r))
		},
	}
	if err := quick.Check(idempotent, cfg); err != nil {
		t.Fatal(err)
	}
}

// sanitizeAlphabet mixes runes that interact across the sanitize steps:
// ligatures, runes NFKC maps to ligatures, combining marks, spacing and
// format characters.
var sanitizeAlphabet = []rune{
	'a', 'e', 'M', 'u', '^', ' ', '\t', '\n', '.',
	'ﬀ', 'ﬁ', 'ﬃ', 'ﬅ', 'Œ', 'œ', 'Æ', 'æ',
	0x1D2D, 0x10783, 0x1D46, 0xFB00,
	0x0301, 0x0308, 0x0323, 0x0345, 0x0344,
	0x00A0, 0x3000, 0x2028, 0x200B, 0x200D, 0x00AD,
	0xFF21, 0xFF76, 0xFF9E, 0x2460, 0x00A8, 0x1100, 0x1161, 0x11A8,
}

func randomText(r *rand.Rand) string {
	n := r.Intn(12)
	out := make([]rune, n)
	for i := range out {
		if r.Intn(4) == 0 {
			out[i] = rune(r.Intn(0x10FFFF))
			continue
		}
		out[i] = sanitizeAlphabet[r.Intn(len(sanitizeAlphabet))]
	}
	return string(out)
}
