package ocr

import "github.com/abhisek/mathstep/internal/llm"

// ProblemTextSchema defines the JSON schema for text detection responses.
var ProblemTextSchema = &llm.Schema{
	Name:        "problem-text",
	Description: "The math problem transcribed from an image",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "The problem exactly as written, using plain ASCII math where possible (^ for powers, sqrt() for roots)",
			},
			"found": map[string]any{
				"type":        "boolean",
				"description": "False when the image contains no readable math problem",
			},
		},
		"required":             []any{"text", "found"},
		"additionalProperties": false,
	},
}
