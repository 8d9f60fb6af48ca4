package model

// CaseContext is one row of the external test plan, consumed read-only.
type CaseContext struct {
	ID        string `yaml:"id" json:"id"`
	Procedure string `yaml:"procedure" json:"procedure"`
	Outcome   string `yaml:"expected_result" json:"outcome"`
	Details   string `yaml:"details" json:"details"`
}

// CandidateDocument is one oracle-produced document. TitleHint doubles as the
// de-duplication key against previously rendered artifacts.
type CandidateDocument struct {
	TitleHint string `json:"title_hint"`
	Content   string `json:"content"`
}

// GenerationResult is the oracle response payload.
type GenerationResult struct {
	ChangesSummary string              `json:"changes_summary"`
	Persona        *PatientPersona     `json:"patient_persona"`
	Documents      []CandidateDocument `json:"documents"`
}

// ValidationResult lists every violated rule from a single validation pass.
type ValidationResult struct {
	Valid  bool
	Errors []string
}
