package prompts

import (
	"strings"
	"testing"

	"github.com/run-o/talehopper/internal/models"
	"github.com/run-o/talehopper/internal/stages"
)

func basePrompt() models.StoryPrompt {
	return models.StoryPrompt{
		Age:      7,
		Language: "english",
		Length:   10,
	}
}

func TestBuildStoryPromptDeterministic(t *testing.T) {
	prompt := basePrompt()
	prompt.Theme = "friendship"
	history := []string{"Once upon a time.", "The forest grew dark."}

	a := BuildStoryPrompt(prompt, history, "Follow the fox", stages.Guidance(stages.RisingAction))
	b := BuildStoryPrompt(prompt, history, "Follow the fox", stages.Guidance(stages.RisingAction))
	if a != b {
		t.Fatalf("same inputs produced different prompts:\n%s\n---\n%s", a, b)
	}
}

func TestBuildStoryPromptOpeningTurn(t *testing.T) {
	out := BuildStoryPrompt(basePrompt(), nil, "", stages.Guidance(stages.Introduction))

	if !strings.Contains(out, "for a 7-year-old child in english") {
		t.Fatalf("missing base instruction:\n%s", out)
	}
	if strings.Contains(out, "Here is the story so far:") {
		t.Fatalf("opening turn must not include a recap:\n%s", out)
	}
	if !strings.Contains(out, "This is the introduction.") {
		t.Fatalf("missing stage guidance:\n%s", out)
	}
	if !strings.Contains(out, "offer 2 or 3 engaging choices") {
		t.Fatalf("opening turn must request choices:\n%s", out)
	}
	if !strings.Contains(out, `Example: {"paragraph": "next paragraph", "choices":`) {
		t.Fatalf("missing JSON format instruction:\n%s", out)
	}
}

func TestBuildStoryPromptOptionalLinesAreAdditive(t *testing.T) {
	bare := BuildStoryPrompt(basePrompt(), nil, "", stages.Guidance(stages.Introduction))

	withTheme := basePrompt()
	withTheme.Theme = "courage"
	themed := BuildStoryPrompt(withTheme, nil, "", stages.Guidance(stages.Introduction))

	if !strings.Contains(themed, "The theme of the story is: courage.") {
		t.Fatalf("theme line missing:\n%s", themed)
	}
	// Adding one field must only add its line, never disturb the rest.
	bareLines := strings.Split(bare, "\n")
	themedLines := strings.Split(themed, "\n")
	if len(themedLines) != len(bareLines)+1 {
		t.Fatalf("theme added %d lines, want exactly 1", len(themedLines)-len(bareLines))
	}
}

func TestBuildStoryPromptCharacterClauses(t *testing.T) {
	prompt := basePrompt()
	prompt.Characters = []models.Character{
		{Name: "Milo", Type: "dragon", Gender: "male", Personality: "shy"},
		{Name: "Pip", Type: "mouse"},
	}
	out := BuildStoryPrompt(prompt, nil, "", stages.Guidance(stages.Introduction))

	want := "The story includes the following characters: " +
		"Milo who is a dragon with a male gender and a shy personality, Pip who is a mouse."
	if !strings.Contains(out, want) {
		t.Fatalf("character clause mismatch:\n%s", out)
	}
}

func TestBuildStoryPromptMidStoryRecap(t *testing.T) {
	history := []string{"First part.", "Second part."}
	out := BuildStoryPrompt(basePrompt(), history, "Open the door", stages.Guidance(stages.RisingAction))

	if !strings.Contains(out, "Part 1: First part.") || !strings.Contains(out, "Part 2: Second part.") {
		t.Fatalf("history recap missing or misnumbered:\n%s", out)
	}
	if !strings.Contains(out, "'Open the door'") {
		t.Fatalf("chosen option missing:\n%s", out)
	}
	if idx := strings.Index(out, "Part 1:"); idx > strings.Index(out, "Part 2:") {
		t.Fatalf("history out of order:\n%s", out)
	}
}

func TestBuildStoryPromptWindDown(t *testing.T) {
	prompt := basePrompt()
	prompt.Length = 5

	// Penultimate turn: history holds length-2 paragraphs.
	history := []string{"a", "b", "c"}
	out := BuildStoryPrompt(prompt, history, "choice", stages.Guidance(stages.Climax))
	if !strings.Contains(out, "getting close to the end") {
		t.Fatalf("penultimate turn missing wind-down cue:\n%s", out)
	}
	if !strings.Contains(out, "offer 2 or 3 engaging choices") {
		t.Fatalf("penultimate turn must still request choices:\n%s", out)
	}
}

func TestBuildStoryPromptFinalTurn(t *testing.T) {
	prompt := basePrompt()
	prompt.Length = 5

	history := []string{"a", "b", "c", "d"}
	out := BuildStoryPrompt(prompt, history, "choice", stages.Guidance(stages.Resolution))

	if !strings.Contains(out, "end it with a satisfying conclusion") {
		t.Fatalf("final turn missing conclusion cue:\n%s", out)
	}
	if !strings.Contains(out, "Do not generate choices.") {
		t.Fatalf("final turn must suppress choices:\n%s", out)
	}
	if strings.Contains(out, "offer 2 or 3 engaging choices") {
		t.Fatalf("final turn must not request choices:\n%s", out)
	}
}

func TestBuildStoryPromptChoiceWithoutHistoryIgnored(t *testing.T) {
	// A stray choice with no history produces an opening prompt; the
	// recap block requires both.
	out := BuildStoryPrompt(basePrompt(), nil, "dangling", stages.Guidance(stages.Introduction))
	if strings.Contains(out, "dangling") {
		t.Fatalf("choice leaked into opening prompt:\n%s", out)
	}
}
