package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lucenz/chartgen/internal/core/model"
)

// PatientDB is the durable identity store: one keyed JSON map from patient id
// to persona. Single-process, read-modify-write; there is no file locking.
type PatientDB struct {
	path string
}

func NewPatientDB(path string) *PatientDB {
	return &PatientDB{path: path}
}

func (db *PatientDB) readAll() (map[string]*model.PatientPersona, error) {
	data, err := os.ReadFile(db.path)
	if os.IsNotExist(err) {
		return map[string]*model.PatientPersona{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read patient db '%s': %w", db.path, err)
	}

	records := map[string]*model.PatientPersona{}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse patient db: %w", err)
	}
	return records, nil
}

func (db *PatientDB) writeAll(records map[string]*model.PatientPersona) error {
	if err := os.MkdirAll(filepath.Dir(db.path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode patient db: %w", err)
	}
	if err := os.WriteFile(db.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write patient db: %w", err)
	}
	return nil
}

// Load returns the stored persona for the patient, or nil when the patient has
// never been generated.
func (db *PatientDB) Load(patientID string) (*model.PatientPersona, error) {
	records, err := db.readAll()
	if err != nil {
		return nil, err
	}
	return records[patientID], nil
}

// Save writes the persona under the patient id. Identity-bearing fields are
// written once, on first creation; on rerun the stored values win and only the
// remaining fields (narrative, payer, contact, biometrics) are refreshed.
func (db *PatientDB) Save(patientID string, persona *model.PatientPersona) error {
	records, err := db.readAll()
	if err != nil {
		return err
	}

	if existing, ok := records[patientID]; ok {
		persona.ApplyIdentityLock(existing)
	}
	records[patientID] = persona

	return db.writeAll(records)
}

// Delete removes a single patient record. Used by the purge path.
func (db *PatientDB) Delete(patientID string) (bool, error) {
	records, err := db.readAll()
	if err != nil {
		return false, err
	}
	if _, ok := records[patientID]; !ok {
		return false, nil
	}
	delete(records, patientID)
	return true, db.writeAll(records)
}

// Reset empties the store.
func (db *PatientDB) Reset() error {
	return db.writeAll(map[string]*model.PatientPersona{})
}

// AllDisplayNames projects every stored persona to "First Last". Feeds the
// exclusion set so new personas never reuse a name.
func (db *PatientDB) AllDisplayNames() ([]string, error) {
	records, err := db.readAll()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, p := range records {
		if p != nil && p.FirstName != "" && p.LastName != "" {
			names = append(names, p.DisplayName())
		}
	}
	return names, nil
}
