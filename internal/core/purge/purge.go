package purge

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lucenz/chartgen/internal/config"
	"github.com/lucenz/chartgen/internal/core/store"
	"github.com/lucenz/chartgen/internal/logger"
)

// Confirm asks the caller whether a destructive operation may proceed. The
// shell wires an interactive prompt; the HTTP surface confirms implicitly.
type Confirm func(message string) bool

// Purger removes generated data. Every operation is destructive and
// unrecoverable; nothing here touches the case plan or configuration.
type Purger struct {
	cfg      *config.Config
	log      *logger.Logger
	patients *store.PatientDB
	history  *store.HistoryLog
	confirm  Confirm
}

func New(cfg *config.Config, log *logger.Logger, patients *store.PatientDB, history *store.HistoryLog, confirm Confirm) *Purger {
	if confirm == nil {
		confirm = func(string) bool { return true }
	}
	return &Purger{cfg: cfg, log: log, patients: patients, history: history, confirm: confirm}
}

// All wipes reports, personas, logs and the patient database.
func (p *Purger) All() error {
	if !p.confirm("This will wipe ALL logs, documents, personas and the patient database.") {
		return nil
	}

	for _, dir := range []string{p.cfg.ReportsDir(), p.cfg.PersonasDir(), p.cfg.LogsDir()} {
		if err := resetDir(dir); err != nil {
			return err
		}
	}
	if err := p.patients.Reset(); err != nil {
		return err
	}
	p.log.Info("purged all generated data")
	return nil
}

// Documents clears rendered reports but preserves personas and the store.
func (p *Purger) Documents() error {
	if !p.confirm("This will clear ALL patient documents but PRESERVE personas.") {
		return nil
	}
	if err := resetDir(p.cfg.ReportsDir()); err != nil {
		return err
	}
	p.log.Info("purged documents", "personas_preserved", true)
	return nil
}

// Personas clears the patient database and the persona sheets.
func (p *Purger) Personas() error {
	if !p.confirm("This will clear ALL personas from the database and delete the personas folder.") {
		return nil
	}
	if err := p.patients.Reset(); err != nil {
		return err
	}
	if err := resetDir(p.cfg.PersonasDir()); err != nil {
		return err
	}
	p.log.Info("purged personas")
	return nil
}

// Patient removes every trace of a single patient id.
func (p *Purger) Patient(patientID string) error {
	if !p.confirm(fmt.Sprintf("This will delete ALL data for patient id '%s'.", patientID)) {
		return nil
	}

	if err := os.RemoveAll(p.cfg.PatientReportsDir(patientID)); err != nil {
		return fmt.Errorf("failed to remove reports for %s: %w", patientID, err)
	}

	// Persona sheets carry the id in the filename.
	matches, err := filepath.Glob(filepath.Join(p.cfg.PersonasDir(), fmt.Sprintf("Persona_%s_*", patientID)))
	if err == nil {
		for _, m := range matches {
			_ = os.Remove(m)
		}
	}

	if err := p.history.Delete(patientID); err != nil {
		return fmt.Errorf("failed to remove history for %s: %w", patientID, err)
	}

	removed, err := p.patients.Delete(patientID)
	if err != nil {
		return err
	}
	p.log.Info("purged patient", "patient_id", patientID, "had_db_entry", removed)
	return nil
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear '%s': %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to recreate '%s': %w", dir, err)
	}
	return nil
}
