package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FormatError reports model output that could not be parsed into the
// expected {paragraph, choices} object.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string { return fmt.Sprintf("invalid story response: %v", e.Err) }
func (e *FormatError) Unwrap() error { return e.Err }

// ExtractStoryJSON parses raw provider text into the generated
// paragraph and the follow-up choices. Models frequently wrap the JSON
// in Markdown fences or stray quotes, so that noise is stripped before
// parsing; the content itself is trusted verbatim once structurally
// valid.
func ExtractStoryJSON(raw string) (string, []string, error) {
	cleaned := stripWrapping(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return "", nil, &FormatError{Err: fmt.Errorf("not a JSON object: %w", err)}
	}

	rawParagraph, ok := fields["paragraph"]
	if !ok {
		return "", nil, &FormatError{Err: errors.New("missing paragraph field")}
	}
	var paragraph string
	if err := json.Unmarshal(rawParagraph, &paragraph); err != nil {
		return "", nil, &FormatError{Err: fmt.Errorf("bad paragraph field: %w", err)}
	}

	rawChoices, ok := fields["choices"]
	if !ok {
		return "", nil, &FormatError{Err: errors.New("missing choices field")}
	}
	var choices []string
	if err := json.Unmarshal(rawChoices, &choices); err != nil {
		return "", nil, &FormatError{Err: fmt.Errorf("bad choices field: %w", err)}
	}

	return paragraph, choices, nil
}

// stripWrapping removes surrounding whitespace, Markdown code fences
// and stray quote characters around the JSON payload.
func stripWrapping(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
		// Opening fences often carry a language tag.
		if rest := strings.TrimSpace(strings.TrimPrefix(s, "json")); strings.HasPrefix(rest, "{") {
			s = rest
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	s = strings.Trim(strings.TrimSpace(s), "`'\"")
	return strings.TrimSpace(s)
}
