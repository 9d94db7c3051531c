package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/tokengate/internal/domain"
)

// GenerateUseCase is the admission facade: validate, gate, then invoke
// the bounded external call. Billing commits before the call and is
// never reversed; a timed-out call still costs one unit.
type GenerateUseCase struct {
	meter     *MeterUseCase
	generator Generator
	timeout   time.Duration
}

// NewGenerateUseCase creates a new GenerateUseCase.
func NewGenerateUseCase(meter *MeterUseCase, generator Generator, timeout time.Duration) *GenerateUseCase {
	return &GenerateUseCase{
		meter:     meter,
		generator: generator,
		timeout:   timeout,
	}
}

// GenerateInput represents one generation request.
type GenerateInput struct {
	Caller    domain.Caller
	Prompt    string
	RequestID string
}

// GenerateOutput is the shaped result of a generation request.
type GenerateOutput struct {
	Skipped   bool
	Outcome   Outcome
	RequestID string
	Content   *domain.GeneratedContent
}

// Generate handles one request end to end. The generator is only reached
// after a committed billing decision; duplicates short-circuit before it.
func (uc *GenerateUseCase) Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error) {
	if err := domain.ValidatePrompt(input.Prompt); err != nil {
		return nil, err
	}

	requestID := input.RequestID
	if requestID == "" {
		requestID = domain.SynthRequestID(input.Caller.ID, time.Now())
	}

	admission, err := uc.meter.Admit(ctx, input.Caller, requestID)
	if err != nil {
		return nil, err
	}

	if admission.Outcome == OutcomeDuplicate {
		return &GenerateOutput{
			Skipped:   true,
			Outcome:   OutcomeDuplicate,
			RequestID: requestID,
		}, nil
	}

	content, err := uc.invoke(ctx, input.Prompt)
	if err != nil {
		return nil, err
	}

	return &GenerateOutput{
		Outcome:   admission.Outcome,
		RequestID: requestID,
		Content:   content,
	}, nil
}

// invoke runs the external call under a hard deadline. Cancellation is
// best effort: the provider may still have done the work.
func (uc *GenerateUseCase) invoke(ctx context.Context, prompt string) (*domain.GeneratedContent, error) {
	callCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	content, err := uc.generator.Generate(callCtx, prompt)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, domain.ErrGenerationTimeout
		}

		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	return content, nil
}
