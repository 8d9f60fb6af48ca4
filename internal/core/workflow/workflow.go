package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lucenz/chartgen/internal/config"
	"github.com/lucenz/chartgen/internal/core/caseplan"
	"github.com/lucenz/chartgen/internal/core/docindex"
	"github.com/lucenz/chartgen/internal/core/identity"
	"github.com/lucenz/chartgen/internal/core/model"
	"github.com/lucenz/chartgen/internal/core/oracle"
	"github.com/lucenz/chartgen/internal/core/reconcile"
	"github.com/lucenz/chartgen/internal/core/store"
	"github.com/lucenz/chartgen/internal/core/validate"
	"github.com/lucenz/chartgen/internal/logger"
	"github.com/lucenz/chartgen/internal/render"
)

type State string

const (
	StateCaseLoaded       State = "CASE_LOADED"
	StateContextAssembled State = "CONTEXT_ASSEMBLED"
	StateOracleInvoked    State = "ORACLE_INVOKED"
	StateDocsReconciled   State = "DOCS_RECONCILED"
	StateRendered         State = "RENDERED"
	StatePersisted        State = "PERSISTED"
	StateAborted          State = "ABORTED"
)

type DocOutcome string

const (
	OutcomeValidated DocOutcome = "validated"
	OutcomeRepaired  DocOutcome = "repaired"
	OutcomeDegraded  DocOutcome = "degraded"
)

// DocumentReport is the per-document result of one run.
type DocumentReport struct {
	Title    string
	Sequence int
	Filename string
	Action   reconcile.Action
	Outcome  DocOutcome
	RenderErr string
}

// RunReport is what one patient run produced. Aborted runs leave no store
// mutation and no new artifacts; NoOp runs append history only.
type RunReport struct {
	PatientID   string
	State       State
	NoOp        bool
	PersonaName string
	Documents   []DocumentReport
	Summary     string
}

// Orchestrator sequences one patient through the pipeline: load case,
// assemble context, invoke the oracle, reconcile, validate/repair, render,
// persist. Strictly sequential and synchronous; all side effects on the
// stores are committed at the PERSISTED step only.
type Orchestrator struct {
	cfg        *config.Config
	log        *logger.Logger
	cases      caseplan.Source
	patients   *store.PatientDB
	history    *store.HistoryLog
	oracle     *oracle.Oracle
	validator  *validate.Validator
	constraint *identity.Builder
	renderer   render.Renderer
	now        func() time.Time
}

func NewOrchestrator(
	cfg *config.Config,
	log *logger.Logger,
	cases caseplan.Source,
	patients *store.PatientDB,
	history *store.HistoryLog,
	orc *oracle.Oracle,
	validator *validate.Validator,
	constraint *identity.Builder,
	renderer render.Renderer,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		log:        log,
		cases:      cases,
		patients:   patients,
		history:    history,
		oracle:     orc,
		validator:  validator,
		constraint: constraint,
		renderer:   renderer,
		now:        time.Now,
	}
}

// ProcessPatient runs the state machine for a single patient. The returned
// error is patient-scoped; the batch scheduler logs it and moves on.
func (o *Orchestrator) ProcessPatient(ctx context.Context, patientID, feedback string, excluded *identity.ExclusionSet) (*RunReport, error) {
	report := &RunReport{PatientID: patientID, State: StateCaseLoaded}
	log := o.log.With("patient_id", patientID)

	caseCtx, err := o.cases.Case(patientID)
	if err != nil {
		report.State = StateAborted
		return report, err
	}
	log.Info("case loaded", "procedure", caseCtx.Procedure, "outcome", caseCtx.Outcome)

	// CONTEXT_ASSEMBLED: persona, history, document index, constraint.
	existing, err := o.patients.Load(patientID)
	if err != nil {
		report.State = StateAborted
		return report, err
	}
	historyTxt, err := o.history.Read(patientID)
	if err != nil {
		report.State = StateAborted
		return report, err
	}

	reportsDir := o.cfg.PatientReportsDir(patientID)
	index, skipped, err := docindex.Resolve(patientID, reportsDir)
	if err != nil {
		report.State = StateAborted
		return report, err
	}
	for _, name := range skipped {
		log.Warn("ignoring malformed artifact filename", "file", name)
	}

	constraint := o.constraint.Build(existing, excluded)
	report.State = StateContextAssembled

	existingTitles := make([]string, 0, len(index.Entries))
	for title := range index.Entries {
		existingTitles = append(existingTitles, title)
	}
	sort.Strings(existingTitles)

	// ORACLE_INVOKED: single blocking call, timeout included.
	result, err := o.oracle.Generate(ctx, oracle.Request{
		Case:           caseCtx,
		Constraint:     constraint,
		HistoryContext: o.assembleHistory(historyTxt, existing),
		ExistingTitles: existingTitles,
		Feedback:       feedback,
	})
	if err != nil {
		report.State = StateAborted
		return report, err
	}
	report.State = StateOracleInvoked
	report.Summary = result.ChangesSummary

	// The store is authoritative on identity; oracle output is advisory.
	result.Persona.ApplyIdentityLock(existing)
	report.PersonaName = result.Persona.DisplayName()

	// Explicit no-op success: existing evidence is sufficient. History still
	// records the run so it stays distinguishable from a failure.
	if len(result.Documents) == 0 {
		if err := o.history.Append(patientID, feedback, result.ChangesSummary); err != nil {
			report.State = StateAborted
			return report, err
		}
		report.NoOp = true
		report.State = StatePersisted
		log.Info("existing evidence sufficient, no new documents")
		return report, nil
	}

	decisions := reconcile.Plan(index, result.Documents)
	report.State = StateDocsReconciled

	mrn := fmt.Sprintf("MRN-%s-%d", patientID, o.now().Year())
	renderedAny := false

	for _, d := range decisions {
		docReport := o.processDocument(ctx, log, patientID, mrn, result.Persona, d, &index, reportsDir)
		report.Documents = append(report.Documents, docReport)
		if docReport.RenderErr == "" {
			renderedAny = true
		}
	}
	if renderedAny {
		report.State = StateRendered
	}

	if existing == nil {
		if _, err := render.PersonaSheet(ctx, o.renderer, o.cfg.PersonasDir(), patientID, mrn, result.Persona); err != nil {
			log.Warn("persona sheet render failed", "error", err)
		}
	}

	// PERSISTED: identity store, history, sidecar index - only now.
	if err := o.patients.Save(patientID, result.Persona); err != nil {
		report.State = StateAborted
		return report, err
	}
	if err := o.history.Append(patientID, feedback, result.ChangesSummary); err != nil {
		report.State = StateAborted
		return report, err
	}
	if err := index.Write(reportsDir); err != nil {
		log.Warn("failed to persist document index", "error", err)
	}

	report.State = StatePersisted
	log.Info("run persisted", "persona", report.PersonaName, "documents", len(report.Documents))
	return report, nil
}

// processDocument validates, repairs (once) and renders a single candidate.
// Per-document outcomes never block siblings.
func (o *Orchestrator) processDocument(
	ctx context.Context,
	log *logger.Logger,
	patientID, mrn string,
	persona *model.PatientPersona,
	d reconcile.Decision,
	index *docindex.Index,
	reportsDir string,
) DocumentReport {
	docReport := DocumentReport{
		Title:    d.Doc.TitleHint,
		Sequence: d.Sequence,
		Action:   d.Action,
		Outcome:  OutcomeValidated,
	}

	content := d.Doc.Content
	vr := o.validator.Validate(content)
	if !vr.Valid {
		log.Warn("document failed validation, attempting repair",
			"title", d.Doc.TitleHint, "errors", vr.Errors)

		repaired, err := o.oracle.Repair(ctx, content, vr.Errors)
		if err != nil {
			log.Warn("repair call failed", "title", d.Doc.TitleHint, "error", err)
			docReport.Outcome = OutcomeDegraded
		} else if rv := o.validator.Validate(repaired); rv.Valid {
			content = repaired
			docReport.Outcome = OutcomeRepaired
		} else {
			// Rendered anyway: it still carries clinical information. The
			// filename marker is the only persisted validation state.
			content = repaired
			docReport.Outcome = OutcomeDegraded
		}
	}

	degraded := docReport.Outcome == OutcomeDegraded
	stem := docindex.Filename(patientID, d.Sequence, d.Doc.TitleHint, degraded)
	docReport.Filename = stem + ".png"

	job := render.Job{
		Path:  filepath.Join(reportsDir, docReport.Filename),
		Title: d.Doc.TitleHint,
		Meta: validate.ReportMetadata{
			PatientID:   patientID,
			MRN:         mrn,
			PatientName: persona.DisplayName(),
			DOB:         persona.DOB,
			Gender:      persona.Gender,
			ReportDate:  o.now().Format("2006-01-02"),
			Provider:    persona.Provider.GeneralPractitioner,
			Facility:    persona.Provider.ManagingOrganization,
			AccessionID: fmt.Sprintf("ACC-%s-%s", patientID, shortID()),
			DocType:     docTypeFromTitle(d.Doc.TitleHint),
		},
		Content: content,
	}

	if err := o.renderer.Render(ctx, job); err != nil {
		log.Error("render failed", "title", d.Doc.TitleHint, "error", err)
		docReport.RenderErr = err.Error()
		return docReport
	}

	// An update whose degraded marker changed leaves the old filename behind;
	// remove the stale slot so title -> sequence stays one to one.
	if d.Action == reconcile.Update && d.PriorFilename != "" && d.PriorFilename != docReport.Filename {
		removeStale(reportsDir, d.PriorFilename, log)
	}

	status := docindex.StatusValid
	if degraded {
		status = docindex.StatusDegraded
	}
	index.Entries[d.Doc.TitleHint] = docindex.Entry{
		Sequence: d.Sequence,
		Filename: docReport.Filename,
		Status:   status,
	}
	if d.Sequence > index.MaxSequence {
		index.MaxSequence = d.Sequence
	}

	return docReport
}

func (o *Orchestrator) assembleHistory(historyTxt string, existing *model.PatientPersona) string {
	if existing == nil {
		return historyTxt
	}
	// The persona context rides along with history so the narrative style
	// carries across runs even when the history log is empty.
	bio := existing.BioNarrative
	if len(bio) > 200 {
		bio = bio[:200] + "..."
	}
	return fmt.Sprintf("%s\nCORE PERSONA (%s): %s", historyTxt, existing.DisplayName(), bio)
}

func docTypeFromTitle(title string) string {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "consult"):
		return "CONSULT"
	case strings.Contains(lower, "lab"):
		return "LAB"
	case strings.Contains(lower, "mri"), strings.Contains(lower, "ct"),
		strings.Contains(lower, "xray"), strings.Contains(lower, "x-ray"),
		strings.Contains(lower, "imaging"), strings.Contains(lower, "scan"),
		strings.Contains(lower, "echo"):
		return "IMAGING"
	case strings.Contains(lower, "discharge"):
		return "DISCHARGE"
	default:
		return "CLINICAL_NOTE"
	}
}

func shortID() string {
	return uuid.New().String()[:8]
}

func removeStale(dir, filename string, log *logger.Logger) {
	if err := os.Remove(filepath.Join(dir, filename)); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to remove stale artifact", "file", filename, "error", err)
	}
}
