package oracle

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucenz/chartgen/internal/core/identity"
	"github.com/lucenz/chartgen/internal/core/model"
)

func kneeRequest() Request {
	return Request{
		Case: &model.CaseContext{
			ID:        "300",
			Procedure: "Knee MRI",
			Outcome:   "Approval",
			Details:   "Chronic pain, conservative therapy failed",
		},
		Constraint: identity.Constraint{Universe: "Seinfeld"},
	}
}

func payload(t *testing.T, docs []model.CandidateDocument) string {
	t.Helper()
	data, err := json.Marshal(model.GenerationResult{
		ChangesSummary: "- generated evidence",
		Persona:        &model.PatientPersona{FirstName: "George", LastName: "Costanza"},
		Documents:      docs,
	})
	require.NoError(t, err)
	return string(data)
}

func TestGenerateParsesStructuredPayload(t *testing.T) {
	mock := &MockLLMClient{Response: "Sure! Here is the data:\n" + payload(t, []model.CandidateDocument{
		{TitleHint: "Ortho_Consult", Content: "note body"},
	})}

	result, err := New(mock, 5, time.Minute).Generate(context.Background(), kneeRequest())
	require.NoError(t, err)
	assert.Equal(t, "George Costanza", result.Persona.DisplayName())
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "Ortho_Consult", result.Documents[0].TitleHint)
}

func TestGeneratePromptCarriesScenarioAndConstraints(t *testing.T) {
	mock := &MockLLMClient{Response: payload(t, nil)}
	req := kneeRequest()
	req.Constraint.ExcludedNames = []string{"Cosmo Kramer"}
	req.ExistingTitles = []string{"Ortho_Consult"}
	req.Feedback = "make the MRI report older"
	req.HistoryContext = "AI CHANGES: - initial generation"

	_, err := New(mock, 7, time.Minute).Generate(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, mock.Prompts, 1)
	prompt := mock.Prompts[0]
	assert.Contains(t, prompt, "minimum 7 distinct clinical documents")
	assert.Contains(t, prompt, "Procedure: Knee MRI")
	assert.Contains(t, prompt, "Target Outcome: Approval")
	assert.Contains(t, prompt, "Cosmo Kramer")
	assert.Contains(t, prompt, "Seinfeld")
	assert.Contains(t, prompt, "ALREADY EXIST for this patient: Ortho_Consult")
	assert.Contains(t, prompt, "make the MRI report older")
	assert.Contains(t, prompt, "AI CHANGES: - initial generation")
}

func TestGenerateIdentityLockPrompt(t *testing.T) {
	mock := &MockLLMClient{Response: payload(t, nil)}
	req := kneeRequest()
	req.Constraint = identity.Constraint{Lock: &model.PatientPersona{
		FirstName: "George", LastName: "Costanza", DOB: "1971-06-22",
	}}

	_, err := New(mock, 5, time.Minute).Generate(context.Background(), req)
	require.NoError(t, err)

	prompt := mock.Prompts[0]
	assert.Contains(t, prompt, "STRICT IDENTITY LOCK")
	assert.Contains(t, prompt, "George Costanza")
	assert.NotContains(t, prompt, "STRICT DIVERSITY RULES")
}

func TestGenerateRejectsMalformedPayload(t *testing.T) {
	mock := &MockLLMClient{Response: "I could not produce JSON today."}

	_, err := New(mock, 5, time.Minute).Generate(context.Background(), kneeRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle returned malformed payload")
}

func TestGenerateRejectsMissingPersona(t *testing.T) {
	data, err := json.Marshal(model.GenerationResult{ChangesSummary: "- nothing"})
	require.NoError(t, err)
	mock := &MockLLMClient{Response: string(data)}

	_, err = New(mock, 5, time.Minute).Generate(context.Background(), kneeRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle returned no patient persona")
}

func TestGenerateTimeoutAbortsCall(t *testing.T) {
	slow := &slowClient{delay: 200 * time.Millisecond}

	_, err := New(slow, 5, 10*time.Millisecond).Generate(context.Background(), kneeRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle invocation failed")
}

func TestRepairStripsCodeFence(t *testing.T) {
	mock := &MockLLMClient{Response: "```\n--- REPORT START ---\nfixed\n--- REPORT END ---\n```"}

	fixed, err := New(mock, 5, time.Minute).Repair(context.Background(), "broken", []string{"Missing Start Marker"})
	require.NoError(t, err)
	assert.Equal(t, "--- REPORT START ---\nfixed\n--- REPORT END ---", fixed)

	// The repair prompt names every violation verbatim.
	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "- Missing Start Marker")
	assert.Contains(t, mock.Prompts[0], "broken")
}

// slowClient blocks until the context is cancelled or the delay elapses.
type slowClient struct {
	delay time.Duration
}

func (s *slowClient) Generate(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(s.delay):
		return "{}", nil
	}
}
