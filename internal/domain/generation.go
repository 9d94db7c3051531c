package domain

// GeneratedContent is the opaque result returned by the external generator.
type GeneratedContent struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}
