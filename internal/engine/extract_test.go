package engine

import (
	"errors"
	"testing"
)

func TestExtractStoryJSONPlain(t *testing.T) {
	raw := `{"paragraph": "The cave glowed.", "choices": ["Enter", "Wait"]}`
	paragraph, choices, err := ExtractStoryJSON(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paragraph != "The cave glowed." {
		t.Fatalf("paragraph = %q", paragraph)
	}
	if len(choices) != 2 || choices[0] != "Enter" || choices[1] != "Wait" {
		t.Fatalf("choices = %v", choices)
	}
}

func TestExtractStoryJSONWrapped(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"fenced", "```\n{\"paragraph\": \"p\", \"choices\": []}\n```"},
		{"fenced with tag", "```json\n{\"paragraph\": \"p\", \"choices\": []}\n```"},
		{"single quotes", `'{"paragraph": "p", "choices": []}'`},
		{"backticks", "`{\"paragraph\": \"p\", \"choices\": []}`"},
		{"surrounding whitespace", "\n\n  {\"paragraph\": \"p\", \"choices\": []}  \n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			paragraph, choices, err := ExtractStoryJSON(tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if paragraph != "p" {
				t.Fatalf("paragraph = %q", paragraph)
			}
			if len(choices) != 0 {
				t.Fatalf("choices = %v", choices)
			}
		})
	}
}

func TestExtractStoryJSONEmptyChoices(t *testing.T) {
	_, choices, err := ExtractStoryJSON(`{"paragraph": "The end.", "choices": []}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if choices == nil || len(choices) != 0 {
		t.Fatalf("want empty non-nil slice semantics, got %#v", choices)
	}
}

func TestExtractStoryJSONFailures(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not JSON", "Once upon a time there was no JSON."},
		{"missing paragraph", `{"choices": ["a"]}`},
		{"missing choices", `{"paragraph": "p"}`},
		{"paragraph wrong type", `{"paragraph": 7, "choices": []}`},
		{"choices wrong type", `{"paragraph": "p", "choices": "Enter"}`},
		{"empty input", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ExtractStoryJSON(tc.raw)
			if err == nil {
				t.Fatal("expected error")
			}
			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("want FormatError, got %T: %v", err, err)
			}
		})
	}
}

func TestExtractStoryJSONIgnoresExtraFields(t *testing.T) {
	raw := `{"paragraph": "p", "choices": ["a"], "mood": "tense"}`
	paragraph, choices, err := ExtractStoryJSON(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paragraph != "p" || len(choices) != 1 {
		t.Fatalf("got %q %v", paragraph, choices)
	}
}
