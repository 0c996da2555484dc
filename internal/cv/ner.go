package cv

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
)

const (
	EntityPerson   = "PERSON"
	EntityOrg      = "ORG"
	EntityLocation = "LOCATION"
)

type Entity struct {
	Text  string
	Label string
}

// EntityAnalyzer tags people, organisations and places in free text.
type EntityAnalyzer interface {
	Analyze(ctx context.Context, text string) ([]Entity, error)
}

// ProseAnalyzer runs the prose English NER model.
type ProseAnalyzer struct{}

func (ProseAnalyzer) Analyze(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}

	var out []Entity
	for _, ent := range doc.Entities() {
		label := normalizeLabel(ent.Label)
		name := strings.TrimSpace(ent.Text)
		if label == "" || name == "" {
			continue
		}
		out = append(out, Entity{Text: name, Label: label})
	}
	return out, nil
}

func normalizeLabel(label string) string {
	switch strings.ToUpper(label) {
	case "PERSON", "PER":
		return EntityPerson
	case "ORG", "ORGANIZATION":
		return EntityOrg
	case "GPE", "LOC", "LOCATION":
		return EntityLocation
	}
	return ""
}

// honorifics may end a token with a period without ending the sentence.
var honorifics = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true, "jr": true, "sr": true, "st": true,
}

// greetings are openers the tagger tends to read as places or people.
var greetings = map[string]bool{
	"hello": true, "hi": true, "hey": true, "dear": true, "greetings": true, "thanks": true, "regards": true,
}

// entitySpan cuts an entity at the first sentence break. Initials such as
// "J. Smith" and honorifics such as "Dr." do not end the span.
func entitySpan(text string) string {
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = text[:i]
	}
	fields := strings.Fields(text)
	for i, f := range fields {
		last := f[len(f)-1]
		word := strings.TrimRight(f, ".!?;:,")
		breaks := strings.IndexByte("!?;:", last) >= 0 ||
			(last == '.' && utf8.RuneCountInString(word) > 1 && !honorifics[strings.ToLower(word)])
		if breaks {
			fields = fields[:i+1]
			break
		}
	}
	return strings.TrimRight(strings.Join(fields, " "), ".!?;:, ")
}

// cleanEntities trims spans to one sentence and drops greetings and skill
// names, keeping the order the analyzer reported.
func cleanEntities(entities []Entity, skills []string) []Entity {
	skillSet := make(map[string]bool, len(skills))
	for _, s := range skills {
		skillSet[strings.ToLower(s)] = true
	}
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		text := entitySpan(e.Text)
		key := strings.ToLower(text)
		if text == "" || greetings[key] || skillSet[key] {
			continue
		}
		out = append(out, Entity{Text: text, Label: e.Label})
	}
	return out
}

// firstEntity returns the first entity with the given label.
func firstEntity(entities []Entity, label string) string {
	for _, e := range entities {
		if e.Label == label {
			return e.Text
		}
	}
	return ""
}
