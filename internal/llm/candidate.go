package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// CandidateFields is the structured contact profile exchanged with the model.
type CandidateFields struct {
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Location     string     `json:"location"`
	Skills       StringList `json:"skills"`
	Education    string     `json:"education"`
	Experience   string     `json:"experience"`
	LastJobTitle string     `json:"last_job_title"`
}

// StringList accepts a JSON array or a comma separated string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []interface{}
	if err := json.Unmarshal(data, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, item := range list {
			if item == nil {
				continue
			}
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			out = nil
		}
		*l = out
		return nil
	}

	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		// Numbers or objects are treated as unknown.
		*l = nil
		return nil
	}
	if s == nil {
		*l = nil
		return nil
	}
	var out []string
	for _, part := range strings.Split(*s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*l = out
	return nil
}

const candidateSystemPrompt = "You are assisting with automation for a recruiting team. " +
	"Given a resume's raw text, extract the candidate details as JSON with the following keys: " +
	"full_name, email, phone, location, skills (array of distinct skills), education (string), " +
	"experience (string summary), and last_job_title. " +
	"Always respond with valid JSON only. Use the provided draft values when confident, otherwise refine them. " +
	"If a field is unknown, use null."

// ExtractCandidate asks the model to fill in a candidate profile from resume text,
// seeded with the values already found heuristically.
func (s *Service) ExtractCandidate(ctx context.Context, text string, draft CandidateFields) (*CandidateFields, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("LLM provider not configured")
	}

	hint, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf("Known draft values:\n%s\n\nResume text:\n%s", hint, text)

	response, err := s.Generate(ctx, candidateSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripFences(response)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	out := &CandidateFields{
		FullName:     stringField(raw, "full_name"),
		Email:        stringField(raw, "email"),
		Phone:        stringField(raw, "phone"),
		Location:     stringField(raw, "location"),
		Education:    stringField(raw, "education"),
		Experience:   stringField(raw, "experience"),
		LastJobTitle: stringField(raw, "last_job_title"),
	}
	if v, ok := raw["skills"]; ok {
		if err := json.Unmarshal(v, &out.Skills); err != nil {
			return nil, fmt.Errorf("failed to parse skills: %w", err)
		}
	}

	s.log.Info().Int("skills", len(out.Skills)).Bool("has_name", out.FullName != "").Msg("LLM extracted candidate fields")
	return out, nil
}

// stringField returns a trimmed string value; non-string values count as unknown.
func stringField(raw map[string]json.RawMessage, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// stripFences removes a markdown code fence some models wrap around JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
