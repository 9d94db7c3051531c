package domain

import "strings"

// MaxPromptLength bounds prompt size before it reaches the generator.
const MaxPromptLength = 32_000

// ValidatePrompt checks that a prompt is non-empty and within bounds.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	if len(prompt) > MaxPromptLength {
		return ErrPromptTooLong
	}
	return nil
}
