package docindex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// DegradedSuffix marks an artifact that failed structural repair. It is
	// part of the filename stem, before the extension.
	DegradedSuffix = "-NAF"

	sidecarName = "index.json"
)

const (
	StatusValid    = "valid"
	StatusDegraded = "degraded"
)

// Entry is one previously rendered document, keyed by title in the Index.
type Entry struct {
	Sequence int    `json:"sequence"`
	Filename string `json:"filename"`
	Status   string `json:"validation_status"`
}

// Index maps document titles to their artifact slots. Sequence numbers are
// unique per patient and never reused; MaxSequence is the high-water mark.
type Index struct {
	MaxSequence int              `json:"max_sequence"`
	Entries     map[string]Entry `json:"entries"`
}

func NewIndex() Index {
	return Index{Entries: map[string]Entry{}}
}

// Filename builds the artifact stem for a document slot:
// DOC-{patientId}-{seq:03d}-{title}[-NAF].
func Filename(patientID string, seq int, title string, degraded bool) string {
	stem := fmt.Sprintf("DOC-%s-%03d-%s", patientID, seq, title)
	if degraded {
		stem += DegradedSuffix
	}
	return stem
}

// Scan rebuilds the index from artifact filenames in dir. Files that carry the
// patient prefix but do not parse are returned in skipped so the caller can
// warn about them; they never fail the scan. The -NAF marker is stripped from
// the title before indexing, so a degraded document is still matched (and
// overwritten) by a later successful run.
func Scan(patientID, dir string) (Index, []string, error) {
	index := NewIndex()
	var skipped []string

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return index, nil, nil
	}
	if err != nil {
		return index, nil, fmt.Errorf("failed to scan report folder '%s': %w", dir, err)
	}

	prefix := fmt.Sprintf("DOC-%s-", patientID)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		parts := strings.Split(stem, "-")
		// DOC-{pid}-{seq}-{title...}
		if len(parts) < 4 {
			skipped = append(skipped, name)
			continue
		}
		seq, err := strconv.Atoi(parts[2])
		if err != nil {
			skipped = append(skipped, name)
			continue
		}

		title := strings.Join(parts[3:], "-")
		status := StatusValid
		if strings.HasSuffix(title, DegradedSuffix) {
			title = strings.TrimSuffix(title, DegradedSuffix)
			status = StatusDegraded
		}

		index.Entries[title] = Entry{Sequence: seq, Filename: name, Status: status}
		if seq > index.MaxSequence {
			index.MaxSequence = seq
		}
	}

	return index, skipped, nil
}

// Load reads the persisted sidecar index. Returns nil (no error) when the
// sidecar is absent so the caller can fall back to a filename scan.
func Load(dir string) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(dir, sidecarName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document index: %w", err)
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse document index: %w", err)
	}
	if index.Entries == nil {
		index.Entries = map[string]Entry{}
	}
	return &index, nil
}

// Write persists the sidecar beside the artifacts.
func (ix Index) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report folder: %w", err)
	}
	data, err := json.MarshalIndent(ix, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, sidecarName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write document index: %w", err)
	}
	return nil
}

// Resolve prefers the persisted sidecar and falls back to rebuilding from
// filenames. skipped is only populated on the scan path.
func Resolve(patientID, dir string) (Index, []string, error) {
	sidecar, err := Load(dir)
	if err == nil && sidecar != nil {
		return *sidecar, nil, nil
	}
	// Unreadable sidecar degrades to a scan rather than failing the run.
	return Scan(patientID, dir)
}
