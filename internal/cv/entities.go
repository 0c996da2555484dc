package cv

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultSkills is the skill vocabulary matched against candidate text.
var DefaultSkills = []string{
	"python", "django", "flask", "fastapi", "aws", "azure", "docker", "kubernetes",
	"sql", "pandas", "tensorflow", "pytorch", "javascript", "react", "node",
}

var educationKeywords = []string{"Bachelor", "Master", "B.Tech", "BSc", "MSc", "MBA", "PhD"}

var experiencePhrases = []string{"years of experience", "yr experience", "experience of"}

var (
	emailPattern = regexp.MustCompile(`(?i)([A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,})`)
	phonePattern = regexp.MustCompile(`(\+?\d[\d\s\-().]{7,}\d)`)

	// Self-introductions, used when no PERSON entity is recognised.
	introPattern = regexp.MustCompile(`(?:\b[Ii] am|\b[Ii]'m|\b[Mm]y name is|\bName:)[ \t]+([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){0,2})`)
)

// ExtractEmail returns the first email-shaped token.
func ExtractEmail(text string) string {
	m := emailPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractPhone returns the first run of 8+ digits and separators, whitespace-normalized.
func ExtractPhone(text string) string {
	m := phonePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.Join(strings.Fields(m[1]), " ")
}

// FindSkills is a case-insensitive substring scan; the result is sorted and unique.
func FindSkills(text string, vocabulary []string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	out := []string{}
	for _, skill := range vocabulary {
		if skill == "" || seen[skill] {
			continue
		}
		if strings.Contains(lower, strings.ToLower(skill)) {
			seen[skill] = true
			out = append(out, skill)
		}
	}
	sort.Strings(out)
	return out
}

// Lines splits text on newlines, trimming and dropping empty lines.
func Lines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// FindEducation returns the first line mentioning a degree.
func FindEducation(text string) string {
	return firstLineContaining(text, educationKeywords)
}

// FindExperience returns the first line with a years-of-experience phrasing.
func FindExperience(text string) string {
	return firstLineContaining(text, experiencePhrases)
}

func firstLineContaining(text string, keywords []string) string {
	for _, line := range Lines(text) {
		lower := strings.ToLower(line)
		for _, k := range keywords {
			if strings.Contains(lower, strings.ToLower(k)) {
				return line
			}
		}
	}
	return ""
}

func introducedName(text string) string {
	m := introPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
