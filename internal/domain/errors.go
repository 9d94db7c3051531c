package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAccountExists       = errors.New("account already exists")

	// Generation errors
	ErrEmptyPrompt       = errors.New("prompt is required")
	ErrPromptTooLong     = errors.New("prompt exceeds maximum length")
	ErrGenerationTimeout = errors.New("generation timed out")
	ErrGenerationFailed  = errors.New("generation failed")
)

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)
