package docindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestFilenameContract(t *testing.T) {
	assert.Equal(t, "DOC-300-001-Ortho_Consult", Filename("300", 1, "Ortho_Consult", false))
	assert.Equal(t, "DOC-300-042-Knee_MRI_Report-NAF", Filename("300", 42, "Knee_MRI_Report", true))
	// Sequence is zero-padded to three digits, not truncated beyond.
	assert.Equal(t, "DOC-7-1000-Lab_Panel", Filename("7", 1000, "Lab_Panel", false))
}

func TestScanRebuildsIndexFromFilenames(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "DOC-300-001-Ortho_Consult.png")
	touch(t, dir, "DOC-300-003-Knee_MRI_Report-NAF.png")
	touch(t, dir, "DOC-999-001-Other_Patient.png")
	touch(t, dir, "index.json")
	touch(t, dir, "notes.txt")

	index, skipped, err := Scan("300", dir)
	require.NoError(t, err)
	assert.Empty(t, skipped)

	require.Len(t, index.Entries, 2)
	assert.Equal(t, 3, index.MaxSequence)

	assert.Equal(t, Entry{Sequence: 1, Filename: "DOC-300-001-Ortho_Consult.png", Status: StatusValid},
		index.Entries["Ortho_Consult"])

	// The degraded marker is stripped from the title so a later successful
	// run matches and replaces the slot.
	assert.Equal(t, Entry{Sequence: 3, Filename: "DOC-300-003-Knee_MRI_Report-NAF.png", Status: StatusDegraded},
		index.Entries["Knee_MRI_Report"])
}

func TestScanReportsMalformedNamesWithoutFailing(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "DOC-300-001-Ortho_Consult.png")
	touch(t, dir, "DOC-300-xyz-Bad_Sequence.png")
	touch(t, dir, "DOC-300-002.png")

	index, skipped, err := Scan("300", dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"DOC-300-xyz-Bad_Sequence.png", "DOC-300-002.png"}, skipped)
	assert.Len(t, index.Entries, 1)
}

func TestScanMissingDirIsEmptyIndex(t *testing.T) {
	index, skipped, err := Scan("300", filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Empty(t, index.Entries)
	assert.Zero(t, index.MaxSequence)
}

func TestSidecarRoundTrip(t *testing.T) {
	dir := t.TempDir()

	index := NewIndex()
	index.MaxSequence = 4
	index.Entries["Ortho_Consult"] = Entry{Sequence: 1, Filename: "DOC-300-001-Ortho_Consult.png", Status: StatusValid}
	index.Entries["PT_Note"] = Entry{Sequence: 4, Filename: "DOC-300-004-PT_Note-NAF.png", Status: StatusDegraded}
	require.NoError(t, index.Write(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, index.MaxSequence, loaded.MaxSequence)
	assert.Equal(t, index.Entries, loaded.Entries)
}

func TestLoadMissingSidecarReturnsNil(t *testing.T) {
	loaded, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestResolvePrefersSidecarOverScan(t *testing.T) {
	dir := t.TempDir()
	// Artifacts on disk disagree with the sidecar; the sidecar wins.
	touch(t, dir, "DOC-300-001-Ortho_Consult.png")

	index := NewIndex()
	index.MaxSequence = 9
	index.Entries["Echo_Report"] = Entry{Sequence: 9, Filename: "DOC-300-009-Echo_Report.png", Status: StatusValid}
	require.NoError(t, index.Write(dir))

	resolved, skipped, err := Resolve("300", dir)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, 9, resolved.MaxSequence)
	assert.Contains(t, resolved.Entries, "Echo_Report")
	assert.NotContains(t, resolved.Entries, "Ortho_Consult")
}

func TestResolveFallsBackToScanOnCorruptSidecar(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "DOC-300-001-Ortho_Consult.png")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.json"), []byte("{not json"), 0o644))

	resolved, _, err := Resolve("300", dir)
	require.NoError(t, err)
	assert.Contains(t, resolved.Entries, "Ortho_Consult")
}
