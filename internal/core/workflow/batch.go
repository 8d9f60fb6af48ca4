package workflow

import (
	"context"

	"github.com/lucenz/chartgen/internal/core/docindex"
	"github.com/lucenz/chartgen/internal/core/identity"
)

// BatchReport summarizes one batch pass over the case plan.
type BatchReport struct {
	Processed []string
	Skipped   []string
	Failed    map[string]string
	Runs      []*RunReport
}

// Scheduler iterates the full candidate id set strictly sequentially: one
// patient fully processed before the next begins. Failures are patient-scoped;
// the batch always continues.
type Scheduler struct {
	orch *Orchestrator
}

func NewScheduler(orch *Orchestrator) *Scheduler {
	return &Scheduler{orch: orch}
}

// isComplete is the artifact-presence predicate: a patient with at least one
// indexed document is considered done and skipped on batch runs.
func (s *Scheduler) isComplete(patientID string) bool {
	index, _, err := docindex.Resolve(patientID, s.orch.cfg.PatientReportsDir(patientID))
	if err != nil {
		return false
	}
	return len(index.Entries) > 0
}

// RunBatch processes every id in the plan, threading one in-memory exclusion
// set across the batch so a persona created for patient A is already excluded
// when patient B generates - without re-reading the store per patient.
func (s *Scheduler) RunBatch(ctx context.Context) (*BatchReport, error) {
	ids, err := s.orch.cases.AllIDs()
	if err != nil {
		return nil, err
	}

	names, err := s.orch.patients.AllDisplayNames()
	if err != nil {
		return nil, err
	}
	excluded := identity.NewExclusionSet(names)

	report := &BatchReport{Failed: map[string]string{}}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if s.isComplete(id) {
			s.orch.log.Info("skipping patient, already complete", "patient_id", id)
			report.Skipped = append(report.Skipped, id)
			continue
		}

		run, err := s.orch.ProcessPatient(ctx, id, "", excluded)
		report.Runs = append(report.Runs, run)
		if err != nil {
			s.orch.log.Error("patient run aborted", "patient_id", id, "error", err)
			report.Failed[id] = err.Error()
			continue
		}

		if run.PersonaName != "" {
			excluded.Add(run.PersonaName)
		}
		report.Processed = append(report.Processed, id)
	}

	return report, nil
}
