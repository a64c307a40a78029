package models

// Character is one story character supplied by the caller. It has no
// lifecycle of its own and only exists inside a StoryPrompt.
type Character struct {
	Name        string `json:"name" validate:"required"`
	Type        string `json:"type" validate:"required"` // "boy", "girl", "animal", etc
	Gender      string `json:"gender,omitempty"`
	Personality string `json:"personality,omitempty"`
}

// StoryPrompt is the immutable story configuration. The caller sends
// it once per story and re-sends it unchanged on every turn.
type StoryPrompt struct {
	Age      int    `json:"age" validate:"required,min=1,max=12"`
	Language string `json:"language" validate:"required,oneof=english french"`
	Length   int    `json:"length" validate:"required,min=3,max=60"`

	Prompt      string      `json:"prompt,omitempty"`
	Characters  []Character `json:"characters,omitempty" validate:"omitempty,dive"`
	Environment string      `json:"environment,omitempty"`
	Theme       string      `json:"theme,omitempty"`

	// Open strings on purpose: the UI offers suggestions but any value
	// is passed through to the prompt.
	Tone         string `json:"tone,omitempty"`
	ConflictType string `json:"conflict_type,omitempty"`
	EndingStyle  string `json:"ending_style,omitempty"`
}

// StoryRequest is one story turn. An empty history starts a new story;
// a non-empty history plus the reader's choice continues one. The
// stage plan is opaque to the caller and must be echoed back verbatim
// from the previous response.
type StoryRequest struct {
	Prompt    StoryPrompt    `json:"prompt" validate:"required"`
	History   []string       `json:"history,omitempty"`
	Choice    string         `json:"choice,omitempty"`
	StagePlan map[string]int `json:"stage_plan,omitempty"`
}

// StoryResponse carries the full history including the new paragraph,
// the choices for the next step (empty once the story reached its
// target length) and the stage plan to round-trip on the next turn.
type StoryResponse struct {
	History   []string       `json:"history"`
	Choices   []string       `json:"choices"`
	StagePlan map[string]int `json:"stage_plan"`
}
