package prompts

import (
	"fmt"
	"strings"

	"github.com/run-o/talehopper/internal/models"
)

// BuildStoryPrompt renders the complete generation instruction for one
// story turn as a newline-joined list of lines. It is deterministic
// and purely additive: the same inputs always produce the same prompt,
// and each optional configuration field contributes its own line
// without reordering the rest.
func BuildStoryPrompt(prompt models.StoryPrompt, history []string, choice string, stageGuidance string) string {
	var lines []string

	lines = append(lines, fmt.Sprintf(
		"Write a fun, engaging Choose-your-own-adventure style story for a %d-year-old child in %s.",
		prompt.Age, prompt.Language))

	if len(prompt.Characters) > 0 {
		lines = append(lines, fmt.Sprintf(
			"The story includes the following characters: %s.", describeCharacters(prompt.Characters)))
	}
	if prompt.Environment != "" {
		lines = append(lines, fmt.Sprintf(
			"The story takes place in the following environment: %s", prompt.Environment))
	}
	if prompt.Theme != "" {
		lines = append(lines, fmt.Sprintf("The theme of the story is: %s.", prompt.Theme))
	}
	if prompt.Prompt != "" {
		lines = append(lines, fmt.Sprintf("The story should also follow this prompt: '%s'", prompt.Prompt))
	}
	if prompt.Tone != "" {
		lines = append(lines, fmt.Sprintf("The story should have a %s tone.", prompt.Tone))
	}
	if prompt.EndingStyle != "" {
		lines = append(lines, fmt.Sprintf("The story ending style should be: %s style.", prompt.EndingStyle))
	}
	if prompt.ConflictType != "" {
		lines = append(lines, fmt.Sprintf("The story should include a conflict of type: %s.", prompt.ConflictType))
	}

	lines = append(lines, "")

	if len(history) > 0 && choice != "" {
		lines = append(lines, "Here is the story so far:")
		for i, para := range history {
			lines = append(lines, fmt.Sprintf("Part %d: %s", i+1, para))
		}
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf(
			"The child chose the following option for the next part of the story: '%s'."+
				"Continue the story based on that choice.", choice))
	}

	lines = append(lines, "Now write the next paragraph of the story, only write one paragraph at a time.")
	lines = append(lines, fmt.Sprintf("Current story stage: %s", stageGuidance))
	lines = append(lines, fmt.Sprintf(
		"The story should have a total of %d paragraphs, so make sure to adjust the storyline and progression accordingly.",
		prompt.Length))

	if len(history) < prompt.Length-1 {
		lines = append(lines, "Then offer 2 or 3 engaging choices for what could happen next.")
		lines = append(lines, "Choices should be short descriptions and make sense with the story.")
	}

	if len(history) == prompt.Length-2 {
		lines = append(lines, "The story is getting close to the end, so make sure to start wrapping it up.")
	} else if len(history) == prompt.Length-1 {
		lines = append(lines, "The story has reached the desired length, so end it with a satisfying conclusion.")
		lines = append(lines, "Do not generate choices.")
	}

	lines = append(lines,
		"Format the response as a JSON object with a 'paragraph' field containing the generated story paragraph "+
			"and a 'choices' field containing the list of choices for the next step.\n"+
			"Only return the JSON object, do not include any additional text or formatting.\n"+
			`Example: {"paragraph": "next paragraph", "choices": ["Choice 1", "Choice 2", "Choice 3"]}`)

	return strings.Join(lines, "\n")
}

// describeCharacters joins one clause per character.
// TODO: the "who is a" article assumes an English type word and reads
// wrong in French stories; needs per-language phrasing.
func describeCharacters(chars []models.Character) string {
	clauses := make([]string, 0, len(chars))
	for _, c := range chars {
		clause := fmt.Sprintf("%s who is a %s", c.Name, c.Type)
		if c.Gender != "" {
			clause += fmt.Sprintf(" with a %s gender", c.Gender)
		}
		if c.Personality != "" {
			clause += fmt.Sprintf(" and a %s personality", c.Personality)
		}
		clauses = append(clauses, clause)
	}
	return strings.Join(clauses, ", ")
}
