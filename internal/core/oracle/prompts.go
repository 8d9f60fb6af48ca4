package oracle

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert healthcare data generator.
Your task: generate realistic, diverse clinical personas and medical documents based on clinical use cases.

=== Core Rules ===
1. Generate data that is FHIR-compliant and visually realistic.
2. Inference: if a CPT/procedure code is not provided, infer the most clinically appropriate code.
3. Output a single valid JSON object, nothing else.
4. Medical Coding: use REAL ICD-10-CM codes that support medical necessity for the requested CPT procedure.

=== CRITICAL PROJECT CONSTRAINTS ===
A. Data Density: minimum %d distinct clinical documents unless the existing evidence already covers the scenario.
B. Clinical Status: the target procedure is 'requested'; historical procedures are 'completed'.
C. NO AI RESIDUE: never use "[Redacted]", "John Doe", or "Patient X". No meta-commentary. The output must look like a genuine hospital EHR export.
D. Document format: every document content MUST start with the line "--- REPORT START ---", end with the line "--- REPORT END ---", and contain a [REPORT_METADATA] block with PATIENT_ID:, MRN:, PATIENT_NAME:, DOB: and REPORT_DATE: lines.
E. Never use triple quotes (""") anywhere in document content.

=== RESPONSE SHAPE (strict JSON) ===
{
  "changes_summary": "short bulleted summary of what was generated or changed",
  "patient_persona": { ...complete persona object, ALL fields populated... },
  "documents": [ {"title_hint": "Cardiology_Consult", "content": "--- REPORT START --- ..."} ]
}
If the existing documents already provide sufficient evidence for the target outcome, return an empty "documents" list and explain why in "changes_summary".`

// SystemPrompt renders the system message with the configured document floor.
func SystemPrompt(minDocuments int) string {
	return fmt.Sprintf(systemPrompt, minDocuments)
}

func identityLockBlock(r Request) string {
	p := r.Constraint.Lock
	return fmt.Sprintf(`**STRICT IDENTITY LOCK (EXISTING PATIENT):**
You MUST use the following demographics. DO NOT CHANGE THEM.
- Name: %s
- DOB: %s
- Gender: %s
- Address: %s
- Telecom: %s
- Provider: %s (%s)
- Bio Narrative Strategy: keep the style of the existing bio but update the clinical narrative to match the CURRENT procedure (%s).`,
		p.DisplayName(), p.DOB, p.Gender, p.Address, p.Telecom,
		p.Provider.GeneralPractitioner, p.Provider.ManagingOrganization,
		r.Case.Procedure)
}

func diversityBlock(r Request) string {
	exclusion := ""
	if len(r.Constraint.ExcludedNames) > 0 {
		exclusion = fmt.Sprintf("**USED NAMES (AVOID THESE):** %s.",
			strings.Join(r.Constraint.ExcludedNames, ", "))
	}

	return fmt.Sprintf(`**IDENTITY GENERATION (STRICT DIVERSITY RULES):**
- Character Source: select a UNIQUE fictional character from the universe of **%s** (TV/Movie/Book).
- VARIETY MANDATE: %s Select a character NOT in the used list.
- Gender Balance: randomize gender (aim for 50%% male / 50%% female across runs).
- Demographics: generate accurate DOB, Address (matching the show's location), and Telecom.
- Provider: REQUIRED. Generate a GP and managing organization appropriate for the location.
- Bio Narrative: rich, multi-paragraph medical and social history consistent with the character's background, adapted to the patient scenario. Plain text, no markdown.

**FEEDBACK OVERRIDE RULE:**
If the user feedback explicitly specifies a character name, IGNORE the universe and used-names constraints and use the requested character.`,
		r.Constraint.Universe, exclusion)
}

func buildGenerationPrompt(r Request) string {
	history := r.HistoryContext
	if strings.TrimSpace(history) == "" {
		history = "No prior history available."
	}

	feedback := ""
	if strings.TrimSpace(r.Feedback) != "" {
		feedback = fmt.Sprintf(`
**USER FEEDBACK / QA CORRECTIONS:**
The user has provided specific instructions for this run. Incorporate them while strictly adhering to the clinical outcome:
> "%s"
`, r.Feedback)
	}

	duplicatePrevention := ""
	if len(r.ExistingTitles) > 0 {
		duplicatePrevention = fmt.Sprintf(`
**DUPLICATE PREVENTION (CRITICAL):**
- The following documents ALREADY EXIST for this patient: %s
- Generate documents with DIFFERENT titles unless an update to an existing document is clinically warranted; to update one, reuse its exact title.
- Focus on new types of clinical evidence not yet documented.
`, strings.Join(r.ExistingTitles, ", "))
	}

	var constraint string
	if r.Constraint.IsLock() {
		constraint = identityLockBlock(r)
	} else {
		constraint = diversityBlock(r)
	}

	return fmt.Sprintf(`**CLINICAL SCENARIO (IMMUTABLE Source of Truth):**
- Patient ID: %s
- Procedure: %s
- Target Outcome: %s
- Clinical Context: %s

**PAST HISTORY (CONTEXT):**
%s
%s%s
%s

**INSTRUCTIONS:**
1. Clinical Logic: if the target is Denial, remove or weaken supporting evidence; if Approval, ensure strong supporting evidence exists.
2. Titles MUST be UNIQUE and DESCRIPTIVE (e.g. "Cardiology_Consult", "Echo_Report"). No "Approval Letters" or "Denial Notices" - only clinical evidence.
3. Timeline: the target procedure is scheduled in the near FUTURE; all supporting consults, labs and imaging are dated in the PAST.
4. Populate the patient_persona object completely - NO null or missing fields, including contact, provider, communication, link, payer and subscriber.
5. Each document must be extensive: full SOAP notes for consults; technique/findings/impression for imaging. Do not summarize.`,
		r.Case.ID, r.Case.Procedure, r.Case.Outcome, r.Case.Details,
		history, feedback, duplicatePrevention, constraint)
}

func buildRepairPrompt(content string, errors []string) string {
	var errList strings.Builder
	for _, e := range errors {
		fmt.Fprintf(&errList, "- %s\n", e)
	}

	return fmt.Sprintf(`Fix the following clinical document content to resolve these specific validation errors:

ERRORS TO FIX:
%s
ORIGINAL CONTENT:
%s

REPAIR INSTRUCTIONS:
1. Fix ONLY the listed errors
2. Maintain all clinical content
3. Do not add markdown code blocks
4. Preserve the document structure and formatting

RETURN ONLY THE FIXED CONTENT (no explanations, no code blocks).`, errList.String(), content)
}
