package purge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucenz/chartgen/internal/config"
	"github.com/lucenz/chartgen/internal/core/model"
	"github.com/lucenz/chartgen/internal/core/store"
	"github.com/lucenz/chartgen/internal/logger"
)

type fixture struct {
	purger   *Purger
	cfg      *config.Config
	patients *store.PatientDB
	history  *store.HistoryLog
	asked    []string
}

func newFixture(t *testing.T, answer bool) *fixture {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()

	f := &fixture{
		cfg:      cfg,
		patients: store.NewPatientDB(cfg.StorePath()),
		history:  store.NewHistoryLog(cfg.LogsDir()),
	}
	f.purger = New(cfg, logger.NewNop(), f.patients, f.history, func(msg string) bool {
		f.asked = append(f.asked, msg)
		return answer
	})
	return f
}

func (f *fixture) seed(t *testing.T, patientID string) {
	t.Helper()

	dir := f.cfg.PatientReportsDir(patientID)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DOC-"+patientID+"-001-Note.png"), []byte("x"), 0o644))

	require.NoError(t, os.MkdirAll(f.cfg.PersonasDir(), 0o755))
	sheet := filepath.Join(f.cfg.PersonasDir(), "Persona_"+patientID+"_Costanza.png")
	require.NoError(t, os.WriteFile(sheet, []byte("x"), 0o644))

	require.NoError(t, f.patients.Save(patientID, &model.PatientPersona{FirstName: "George", LastName: "Costanza"}))
	require.NoError(t, f.history.Append(patientID, "", "- seeded"))
}

func TestAllWipesEverything(t *testing.T) {
	f := newFixture(t, true)
	f.seed(t, "300")

	require.NoError(t, f.purger.All())

	entries, err := os.ReadDir(f.cfg.ReportsDir())
	require.NoError(t, err)
	assert.Empty(t, entries)

	names, err := f.patients.AllDisplayNames()
	require.NoError(t, err)
	assert.Empty(t, names)

	txt, err := f.history.Read("300")
	require.NoError(t, err)
	assert.Empty(t, txt)
}

func TestDocumentsPreservesPersonas(t *testing.T) {
	f := newFixture(t, true)
	f.seed(t, "300")

	require.NoError(t, f.purger.Documents())

	entries, err := os.ReadDir(f.cfg.ReportsDir())
	require.NoError(t, err)
	assert.Empty(t, entries)

	p, err := f.patients.Load("300")
	require.NoError(t, err)
	assert.NotNil(t, p)
	assert.FileExists(t, filepath.Join(f.cfg.PersonasDir(), "Persona_300_Costanza.png"))
}

func TestPersonasClearsStoreAndSheets(t *testing.T) {
	f := newFixture(t, true)
	f.seed(t, "300")

	require.NoError(t, f.purger.Personas())

	p, err := f.patients.Load("300")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoFileExists(t, filepath.Join(f.cfg.PersonasDir(), "Persona_300_Costanza.png"))

	// Documents survive a persona purge.
	assert.FileExists(t, filepath.Join(f.cfg.PatientReportsDir("300"), "DOC-300-001-Note.png"))
}

func TestPatientRemovesSingleIdOnly(t *testing.T) {
	f := newFixture(t, true)
	f.seed(t, "300")
	f.seed(t, "400")

	require.NoError(t, f.purger.Patient("300"))

	assert.NoDirExists(t, f.cfg.PatientReportsDir("300"))
	assert.NoFileExists(t, filepath.Join(f.cfg.PersonasDir(), "Persona_300_Costanza.png"))

	p, err := f.patients.Load("300")
	require.NoError(t, err)
	assert.Nil(t, p)

	// The sibling patient is untouched.
	assert.DirExists(t, f.cfg.PatientReportsDir("400"))
	p, err = f.patients.Load("400")
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestDeclinedConfirmationIsNoOp(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, "300")

	require.NoError(t, f.purger.All())
	require.NoError(t, f.purger.Patient("300"))

	assert.Len(t, f.asked, 2)
	assert.FileExists(t, filepath.Join(f.cfg.PatientReportsDir("300"), "DOC-300-001-Note.png"))
	p, err := f.patients.Load("300")
	require.NoError(t, err)
	assert.NotNil(t, p)
}
