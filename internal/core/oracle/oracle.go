package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/lucenz/chartgen/internal/core/common"
	"github.com/lucenz/chartgen/internal/core/identity"
	"github.com/lucenz/chartgen/internal/core/model"
	"github.com/lucenz/chartgen/internal/llm"
)

// Request carries everything the oracle needs for one generation call.
type Request struct {
	Case           *model.CaseContext
	Constraint     identity.Constraint
	HistoryContext string
	ExistingTitles []string
	Feedback       string
}

// Oracle wraps the LLM transport with prompt assembly, response parsing and
// the bounded repair call. Every call blocks until the transport returns or
// the configured timeout fires; a timeout is an invocation failure like any
// other, aborting the current patient only.
type Oracle struct {
	client       llm.Client
	minDocuments int
	timeout      time.Duration
}

func New(client llm.Client, minDocuments int, timeout time.Duration) *Oracle {
	if minDocuments <= 0 {
		minDocuments = 5
	}
	return &Oracle{client: client, minDocuments: minDocuments, timeout: timeout}
}

func (o *Oracle) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.timeout)
}

// Generate performs the single synchronous generation call and parses the
// structured payload.
func (o *Oracle) Generate(ctx context.Context, req Request) (*model.GenerationResult, error) {
	prompt := SystemPrompt(o.minDocuments) + "\n\n" + buildGenerationPrompt(req)

	callCtx, cancel := o.callCtx(ctx)
	defer cancel()

	response, err := o.client.Generate(callCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("oracle invocation failed: %w", err)
	}

	result, err := common.ParseJSON[model.GenerationResult](response)
	if err != nil {
		return nil, fmt.Errorf("oracle returned malformed payload: %w", err)
	}
	if result.Persona == nil {
		return nil, fmt.Errorf("oracle returned no patient persona")
	}

	return &result, nil
}

// Repair asks for a corrected version of structurally invalid content.
// Exactly one attempt: the failure mode is the model ignoring formatting
// instructions, not a transient fault, so retries buy nothing.
func (o *Oracle) Repair(ctx context.Context, content string, errors []string) (string, error) {
	callCtx, cancel := o.callCtx(ctx)
	defer cancel()

	response, err := o.client.Generate(callCtx, buildRepairPrompt(content, errors))
	if err != nil {
		return "", fmt.Errorf("repair invocation failed: %w", err)
	}

	return common.StripCodeFence(response), nil
}
